package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"MiniShop/internal/storefront"
)

var (
	colorAccent = lipgloss.Color("#2A7")
	colorMuted  = lipgloss.Color("#888")
	colorToast  = lipgloss.Color("#F4D03F")
)

var styles = struct {
	Title lipgloss.Style
	Muted lipgloss.Style
	Price lipgloss.Style
	Toast lipgloss.Style
	Box   lipgloss.Style
}{
	Title: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Muted: lipgloss.NewStyle().Foreground(colorMuted),
	Price: lipgloss.NewStyle().Bold(true),
	Toast: lipgloss.NewStyle().Foreground(colorToast),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),
}

func printProducts(w io.Writer, v storefront.ProductsView) {
	idW, nameW := 2, 6
	for _, p := range v.Products {
		idW = max(idW, lipgloss.Width(p.ID))
		nameW = max(nameW, lipgloss.Width(p.Name))
	}

	rows := make([]string, 0, len(v.Products)+1)
	rows = append(rows, styles.Title.Render(v.Label))
	for _, p := range v.Products {
		rows = append(rows, strings.Join([]string{
			pad(p.ID, idW),
			pad(p.Name, nameW),
			styles.Price.Render(p.PriceLabel),
			styles.Muted.Render(p.Category + " · " + p.Tag),
		}, "  "))
	}
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func printCategories(w io.Writer, cats []string) {
	for _, c := range cats {
		fmt.Fprintln(w, c)
	}
}

func printCart(w io.Writer, cv storefront.CartView) {
	header := styles.Title.Render(fmt.Sprintf("Carrito (%d)", cv.Badge))

	if cv.Empty {
		fmt.Fprintln(w, styles.Box.Render(header+"\n"+styles.Muted.Render(msgEmptyCart)))
		return
	}

	nameW := 8
	for _, l := range cv.Lines {
		nameW = max(nameW, lipgloss.Width(l.Name))
	}

	rows := []string{header}
	for _, l := range cv.Lines {
		rows = append(rows, fmt.Sprintf("%s  %s  x%d  %s",
			styles.Muted.Render(l.ProductID),
			pad(l.Name, nameW),
			l.Qty,
			styles.Price.Render(l.SubtotalLabel),
		))
	}
	rows = append(rows, fmt.Sprintf("Artículos: %d · Total: %s", cv.Items, styles.Price.Render(cv.TotalLabel)))

	fmt.Fprintln(w, styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func printToast(w io.Writer, msg string) {
	if msg == "" {
		return
	}
	fmt.Fprintln(w, styles.Toast.Render(msg))
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
