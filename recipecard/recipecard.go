// Package recipecard renders a printable A4 card for a recipe, with a QR
// code linking back to the post.
package recipecard

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"recipehub/models"
)

// Card is everything printed on the page.
type Card struct {
	Title       string
	Author      string
	Recipe      string
	PrepTime    int
	CookTime    int
	TotalTime   int
	Servings    int
	Difficulty  models.Difficulty
	MealType    models.MealType
	Ingredients []models.Ingredient
	Steps       []models.Step
	// URL is encoded in the QR code; no code is drawn when empty.
	URL string
}

// FromPost builds a card for p. author may be empty.
func FromPost(p *models.RecipePost, author, url string) Card {
	return Card{
		Title:       p.Title,
		Author:      author,
		Recipe:      p.Recipe,
		PrepTime:    p.PrepTime,
		CookTime:    p.CookTime,
		TotalTime:   p.TotalTime,
		Servings:    p.Servings,
		Difficulty:  p.Difficulty,
		MealType:    p.MealType,
		Ingredients: p.Ingredients,
		Steps:       p.Steps,
		URL:         url,
	}
}

func Render(w io.Writer, c Card) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle(c.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 20)
	pdf.MultiCell(130, 10, tr(c.Title), "", "L", false)
	if c.Author != "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(130, 7, tr("by "+c.Author), "", 1, "L", false, 0, "")
	}

	if c.URL != "" {
		png, err := qrcode.Encode(c.URL, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("qr code: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("qr", 155, 18, 35, 35, false, opts, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 11)
	pdf.SetFillColor(245, 245, 240)
	pdf.CellFormat(130, 8, tr(summaryLine(c)), "", 1, "L", true, 0, "")
	pdf.Ln(4)

	if len(c.Ingredients) > 0 {
		section(pdf, "Ingredients")
		for _, in := range c.Ingredients {
			line := in.Name
			if in.Quantity != "" {
				line = in.Quantity + "  " + in.Name
			}
			pdf.MultiCell(0, 6, tr("- "+line), "", "L", false)
		}
		pdf.Ln(3)
	}

	if len(c.Steps) > 0 {
		section(pdf, "Steps")
		for i, st := range c.Steps {
			n := st.StepNumber
			if n == 0 {
				n = i + 1
			}
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", n, st.Instruction)), "", "L", false)
		}
		pdf.Ln(3)
	}

	if strings.TrimSpace(c.Recipe) != "" {
		section(pdf, "Method")
		pdf.MultiCell(0, 6, tr(c.Recipe), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Arial", "", 11)
}

func summaryLine(c Card) string {
	parts := []string{
		fmt.Sprintf("Prep %d min", c.PrepTime),
		fmt.Sprintf("Cook %d min", c.CookTime),
		fmt.Sprintf("Total %d min", c.TotalTime),
	}
	if c.Servings > 0 {
		parts = append(parts, fmt.Sprintf("Serves %d", c.Servings))
	}
	if c.Difficulty != "" {
		parts = append(parts, string(c.Difficulty))
	}
	if c.MealType != "" {
		parts = append(parts, string(c.MealType))
	}
	return strings.Join(parts, " | ")
}
