//go:build !ebiten

package ui

import (
	"arcade-drive/internal/core"

	"github.com/rs/zerolog"
)

// HUD is a no-op placeholder for headless builds.
type HUD struct{}

// NewHUD returns nil in the headless build.
func NewHUD(int, zerolog.Logger, ...core.Tunable) *HUD { return nil }

// Update is a no-op in the headless build.
func (h *HUD) Update(int) {}

// Contains always reports false in the headless build.
func (h *HUD) Contains(int, int) bool { return false }

// Draw is a no-op in the headless build.
func (h *HUD) Draw(any, int, int) {}
