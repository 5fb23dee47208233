package main

import (
	"io"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

var flavour = catppuccin.Mocha

func color(c catppuccin.Color) lipgloss.Color { return lipgloss.Color(c.Hex) }

// styles holds the report styles for one output stream. A renderer bound
// to a non-terminal writer drops colors.
type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
	dim    lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(color(flavour.Mauve())),
		label:  r.NewStyle().Foreground(color(flavour.Subtext1())),
		ok:     r.NewStyle().Foreground(color(flavour.Green())),
		warn:   r.NewStyle().Foreground(color(flavour.Yellow())),
		err:    r.NewStyle().Foreground(color(flavour.Red())),
		dim:    r.NewStyle().Foreground(color(flavour.Overlay1())),
		header: r.NewStyle().Bold(true).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
		border: r.NewStyle().Foreground(color(flavour.Surface2())),
	}
}
