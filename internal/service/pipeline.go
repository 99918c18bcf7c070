package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"stickermaker/internal/core/domain"
	"stickermaker/internal/imageops"
)

// ProcessImage turns one input file into one output file according to
// mode and returns the output path.
func (o *Orchestrator) ProcessImage(ctx context.Context, path string, mode domain.Mode, outputDir string) (string, error) {
	data, err := o.storage.ReadSource(ctx, path)
	if err != nil {
		return "", err
	}

	if mode.RemoveBackground() {
		if o.remover == nil || !o.remover.Configured() {
			return "", domain.ErrMissingAPIKey
		}
		data, err = o.remover.Remove(ctx, data)
		if err != nil {
			return "", err
		}
	}

	img, err := imageops.Decode(data)
	if err != nil {
		return "", err
	}

	encoded, suffix, err := o.renderer.Render(img, mode.MakeSticker())
	if err != nil {
		return "", err
	}

	outPath := o.storage.OutputPath(outputDir, stem(path), suffix)
	if err := o.storage.SaveOutput(ctx, outPath, encoded); err != nil {
		return "", fmt.Errorf("failed to save output: %w", err)
	}
	return outPath, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
