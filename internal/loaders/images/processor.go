// Package images captions image files with a vision model so they can be
// retrieved by text.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registered decoders.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

// CaptionPrompt is the instruction sent with every image.
const CaptionPrompt = `Describe this image in detail. Include:
1. Main subjects or objects
2. Colors and visual style
3. Text content (if any)
4. Overall purpose or context

Keep the description factual and comprehensive.`

const jpegQuality = 90

// Processor captions images through a vision-capable LLM.
type Processor struct {
	vision  driven.LLMService
	prompt  string
	timeout time.Duration
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithPrompt overrides the caption instruction.
func WithPrompt(prompt string) ProcessorOption {
	return func(p *Processor) {
		if strings.TrimSpace(prompt) != "" {
			p.prompt = prompt
		}
	}
}

// WithTimeout bounds each captioning call. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		p.timeout = d
	}
}

// NewProcessor creates an image processor. A nil vision service yields
// degraded records for every image.
func NewProcessor(vision driven.LLMService, opts ...ProcessorOption) *Processor {
	p := &Processor{vision: vision, prompt: CaptionPrompt}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process decodes the image at path and captions it. Decode failures return
// domain.ErrImageLoad; caption failures are logged and produce the degraded record.
func (p *Processor) Process(ctx context.Context, path string) (domain.Record, error) {
	img, err := decode(path)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: error loading image %s: %w", domain.ErrImageLoad, path, err)
	}
	bounds := img.Bounds()

	description, err := p.caption(ctx, img)
	if err != nil {
		logger.Warn("image description failed for %s, creating basic record: %v", filepath.Base(path), err)
		description = ""
	}

	return NewRecord(path, description).
		WithMetadata(domain.MetaWidth, bounds.Dx()).
		WithMetadata(domain.MetaHeight, bounds.Dy()), nil
}

func (p *Processor) caption(ctx context.Context, img image.Image) (string, error) {
	if p.vision == nil {
		return "", fmt.Errorf("%w: no vision model configured", domain.ErrLLMUnavailable)
	}

	data, err := toJPEG(img)
	if err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	text, err := p.vision.Generate(ctx, p.prompt, driven.GenerateOptions{Images: [][]byte{data}})
	if err != nil {
		return "", fmt.Errorf("generate description: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// NewRecord builds an image record. An empty description gives the
// filename/location form.
func NewRecord(path, description string) domain.Record {
	filename := filepath.Base(path)
	content := fmt.Sprintf("Image file: %s\nLocation: %s", filename, path)
	if description != "" {
		content = fmt.Sprintf("Image: %s\n\nDescription: %s", filename, description)
	}
	return domain.NewSourceRecord(path, domain.RecordTypeImage, content)
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// toJPEG flattens img onto an opaque white canvas and encodes it.
func toJPEG(img image.Image) ([]byte, error) {
	b := img.Bounds()
	rgb := image.NewRGBA(b)
	draw.Draw(rgb, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(rgb, b, img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
