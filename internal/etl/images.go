package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"faq-chatbot/internal/helper"
	"faq-chatbot/internal/llm"
	"faq-chatbot/internal/models"
)

var supportedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ImageProcessor turns image files into searchable documents by asking the
// multimodal provider for a text description.
type ImageProcessor struct {
	llm llm.Client
}

func NewImageProcessor(client llm.Client) *ImageProcessor {
	return &ImageProcessor{llm: client}
}

// ProcessImage generates a description for one image and wraps it as an
// ImageDocument with a fresh UUID id.
func (p *ImageProcessor) ProcessImage(ctx context.Context, imagePath string) (models.ImageDocument, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return models.ImageDocument{}, fmt.Errorf("image file not found: %s", imagePath)
	}
	ext := strings.ToLower(filepath.Ext(imagePath))
	if !supportedImageExtensions[ext] {
		return models.ImageDocument{}, fmt.Errorf("unsupported image format: %s (supported: .png, .jpg, .jpeg)", ext)
	}

	description, err := p.llm.DescribeImage(ctx, imagePath)
	if err != nil {
		return models.ImageDocument{}, err
	}

	docID, err := helper.GenerateUUID()
	if err != nil {
		return models.ImageDocument{}, err
	}
	return models.ImageDocument{
		DocID:       docID,
		Description: description,
		Metadata: models.ImageMetadata{
			ImagePath:   imagePath,
			SourceFile:  filepath.Base(imagePath),
			ContentType: models.ContentTypeImage,
		},
	}, nil
}

// ListImages returns the supported image files in a directory, sorted by
// name. A missing directory yields an empty list.
func (p *ImageProcessor) ListImages(directory string) []string {
	dirEntries, err := os.ReadDir(directory)
	if err != nil {
		return nil
	}

	var paths []string
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		if supportedImageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(directory, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths
}
