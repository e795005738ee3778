// Package tui provides the Bubble Tea integration for tri-runner.
// It handles the terminal UI loop, input mapping, and run orchestration.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// runSeq numbers run models so each one only follows its own tick chain.
var runSeq atomic.Uint64

// TickMsg is sent to trigger a simulation tick for run Run.
type TickMsg struct {
	Run uint64
	At  time.Time
}

// SecondMsg advances the race clock of run Run.
type SecondMsg struct {
	Run uint64
	At  time.Time
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(run uint64, tickRate int) tea.Cmd {
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Run: run, At: t}
	})
}

// secondTickCmd fires once per wall-clock second.
func secondTickCmd(run uint64) tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return SecondMsg{Run: run, At: t}
	})
}
