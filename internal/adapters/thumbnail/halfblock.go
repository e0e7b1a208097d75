package thumbnail

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
)

const upperHalf = "▀"

// HalfBlockRenderer draws images with upper-half blocks, two pixel rows per line
type HalfBlockRenderer struct {
	MaxHeight int // in lines; 0 means unbounded
}

// NewHalfBlockRenderer creates a renderer limited to maxHeight lines
func NewHalfBlockRenderer(maxHeight int) *HalfBlockRenderer {
	return &HalfBlockRenderer{MaxHeight: maxHeight}
}

// Render downsizes the decoded pixels to width columns and returns the preview
func (r *HalfBlockRenderer) Render(intake *domain.Intake, width int) string {
	if intake == nil || intake.Pixels == nil || width <= 0 {
		return ""
	}
	return r.RenderImage(intake.Pixels, width)
}

// RenderImage renders any decoded image
func (r *HalfBlockRenderer) RenderImage(img image.Image, width int) string {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || width <= 0 {
		return ""
	}

	// Keep aspect ratio, then cap the height
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	if r.MaxHeight > 0 && height > r.MaxHeight*2 {
		height = r.MaxHeight * 2
		width = b.Dx() * height / b.Dy()
		if width < 1 {
			width = 1
		}
	}

	small := resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	sb := small.Bounds()

	var out strings.Builder
	for y := sb.Min.Y; y < sb.Max.Y; y += 2 {
		if y > sb.Min.Y {
			out.WriteByte('\n')
		}
		for x := sb.Min.X; x < sb.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(small.At(x, y)))
			if y+1 < sb.Max.Y {
				style = style.Background(hexColor(small.At(x, y+1)))
			}
			out.WriteString(style.Render(upperHalf))
		}
	}
	return out.String()
}

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
