// Package compose lays picked screenshots out as a single homework sheet.
//
// A sheet is a header line (student name and date) followed by one row per
// screenshot, each scaled to the row height and tagged with its chapter
// label, and an optional question box at the bottom.
package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"strings"
	"sync"
	"time"

	// Screenshot decoders.
	_ "image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"homework/internal/fileutil"
)

const (
	titleFontSize    = 30
	labelFontSize    = 18
	questionMaxSize  = 30
	questionMinSize  = 18
	questionWrapCols = 40
	boxMargin        = 20
	labelPadX        = 6
	labelPadY        = 3
	labelAlpha       = 160
)

var (
	labelRed    = color.NRGBA{R: 0xD6, G: 0x52, B: 0x4B, A: labelAlpha}
	labelYellow = color.NRGBA{R: 0xC7, G: 0x8E, B: 0x2B, A: labelAlpha}
	labelGreen  = color.NRGBA{R: 0x3E, G: 0x81, B: 0x61, A: labelAlpha}
)

// Options configures a Renderer.
type Options struct {
	RowHeight    int
	HeaderHeight int
	MinWidth     int
	// FontPath points at a TrueType or OpenType font. Empty uses the
	// built-in ASCII bitmap font.
	FontPath string
}

// Row is one screenshot and its chapter label.
type Row struct {
	Image image.Image
	Label string
}

// Sheet describes a homework page.
type Sheet struct {
	Title    string
	Rows     []Row
	Question string
	// WithQuestion reserves the bottom box even when Question is empty.
	WithQuestion bool
}

// Renderer draws sheets. Faces are built once per size and reused.
type Renderer struct {
	opts Options
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewRenderer validates opts and loads the configured font.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.RowHeight <= 0 || opts.HeaderHeight < 0 || opts.MinWidth < 0 {
		return nil, fmt.Errorf("invalid layout: row=%d header=%d min_width=%d", opts.RowHeight, opts.HeaderHeight, opts.MinWidth)
	}
	r := &Renderer{opts: opts, faces: make(map[float64]font.Face)}
	if opts.FontPath == "" {
		return r, nil
	}
	data, err := os.ReadFile(opts.FontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", opts.FontPath, err)
	}
	r.font = f
	return r, nil
}

func (r *Renderer) face(size float64) font.Face {
	if r.font == nil {
		return basicfont.Face7x13
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if face, ok := r.faces[size]; ok {
		return face
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	r.faces[size] = face
	return face
}

// Render draws the sheet on a white canvas.
func (r *Renderer) Render(s Sheet) (*image.RGBA, error) {
	if len(s.Rows) == 0 {
		return nil, errors.New("render: sheet has no rows")
	}

	rowH := r.opts.RowHeight
	scaled := make([]image.Image, len(s.Rows))
	width := r.opts.MinWidth
	for i, row := range s.Rows {
		if row.Image == nil {
			return nil, fmt.Errorf("render: row %d has no image", i)
		}
		img := scaleToHeight(row.Image, rowH)
		scaled[i] = img
		width = max(width, img.Bounds().Dx())
	}

	rows := len(s.Rows)
	if s.WithQuestion {
		rows++
	}
	height := r.opts.HeaderHeight + rowH*rows
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	drawText(canvas, r.face(titleFontSize), image.Pt(10, 10), s.Title, color.Black)

	y := r.opts.HeaderHeight
	labelFace := r.face(labelFontSize)
	for i, img := range scaled {
		draw.Draw(canvas, img.Bounds().Add(image.Pt(0, y)), img, img.Bounds().Min, draw.Over)
		if label := s.Rows[i].Label; label != "" {
			drawBadge(canvas, labelFace, image.Pt(0, y), label)
		}
		y += rowH
	}

	if s.WithQuestion {
		box := r.questionBox(s.Question, r.opts.MinWidth, rowH)
		draw.Draw(canvas, box.Bounds().Add(image.Pt(0, y)), box, image.Point{}, draw.Src)
	}
	return canvas, nil
}

func (r *Renderer) questionBox(text string, width, height int) *image.RGBA {
	box := image.NewRGBA(image.Rect(0, 0, max(width, 1), height))
	draw.Draw(box, box.Bounds(), image.White, image.Point{}, draw.Src)
	if text == "" {
		return box
	}

	lines := Wrap(text, questionWrapCols)
	var face font.Face
	var tw, th int
	for size := questionMaxSize; size >= questionMinSize; size -= 2 {
		face = r.face(float64(size))
		tw, th = measure(face, lines)
		if tw <= width-boxMargin && th <= height-boxMargin {
			break
		}
		if r.font == nil {
			break
		}
	}

	x := max((width-tw)/2, 0)
	y := max((height-th)/2, 0)
	lineH := face.Metrics().Height.Ceil()
	for i, line := range lines {
		drawText(box, face, image.Pt(x, y+i*lineH), line, color.Black)
	}
	return box
}

// LabelColor picks the badge colour for a chapter label: red for labels
// starting with "1", yellow for labels ending in "S", green otherwise.
func LabelColor(label string) color.NRGBA {
	switch {
	case strings.HasPrefix(label, "1"):
		return labelRed
	case strings.HasSuffix(label, "S"):
		return labelYellow
	default:
		return labelGreen
	}
}

// DisplayDate formats t as month/day without leading zeros.
func DisplayDate(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

// Wrap breaks text on spaces into lines of at most width runes. Words longer
// than width are split.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	var current []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				lines = append(lines, string(current))
				current = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = append(current, w...)
		case len(current)+1+len(w) <= width:
			current = append(append(current, ' '), w...)
		default:
			lines = append(lines, string(current))
			current = append([]rune(nil), w...)
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}

// LoadImage decodes a PNG or JPEG screenshot.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// WriteJPEG encodes img and replaces path atomically.
func WriteJPEG(path string, img image.Image, quality int) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func scaleToHeight(src image.Image, height int) *image.RGBA {
	b := src.Bounds()
	width := 1
	if b.Dy() > 0 {
		width = max(b.Dx()*height/b.Dy(), 1)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func drawBadge(dst draw.Image, face font.Face, at image.Point, label string) {
	tw, th := measure(face, []string{label})
	rect := image.Rect(at.X, at.Y, at.X+tw+labelPadX*2, at.Y+th+labelPadY*2)
	draw.Draw(dst, rect, image.NewUniform(LabelColor(label)), image.Point{}, draw.Over)
	drawText(dst, face, image.Pt(at.X+labelPadX+1, at.Y+labelPadY+1), label, color.NRGBA{A: 120})
	drawText(dst, face, image.Pt(at.X+labelPadX, at.Y+labelPadY), label, color.White)
}

// drawText draws s with its top-left corner at pt.
func drawText(dst draw.Image, face font.Face, pt image.Point, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

func measure(face font.Face, lines []string) (int, int) {
	width := 0
	for _, line := range lines {
		width = max(width, font.MeasureString(face, line).Ceil())
	}
	return width, face.Metrics().Height.Ceil() * len(lines)
}
