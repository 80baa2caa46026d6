package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent = lipgloss.Color("39")
	colorMuted  = lipgloss.Color("245")
	colorError  = lipgloss.Color("196")
	colorInfo   = lipgloss.Color("42")
	colorLike   = lipgloss.Color("205")
	colorWarn   = lipgloss.Color("214")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	authorStyle = lipgloss.NewStyle().Bold(true)
	timeStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	likedStyle  = lipgloss.NewStyle().Foreground(colorLike).Bold(true)
	likesStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	flagStyle   = lipgloss.NewStyle().Foreground(colorWarn)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	commentStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorMuted).
			PaddingLeft(1)

	selectedStyle = commentStyle.BorderForeground(colorAccent)

	replyIndent = 4

	// Разметка текста комментария.
	boldStyle    = lipgloss.NewStyle().Bold(true)
	italicStyle  = lipgloss.NewStyle().Italic(true)
	linkStyle    = lipgloss.NewStyle().Underline(true).Foreground(colorAccent)
	urlStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	mentionStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
	infoStyle   = lipgloss.NewStyle().Foreground(colorInfo)
	signInStyle = lipgloss.NewStyle().Foreground(colorWarn).Italic(true)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWarn).
			Padding(0, 1)
)
