package assets

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ykvlv/checklist-bot/internal/domain"
)

//go:embed defaults/*.json
var DefaultsFS embed.FS

// DefaultGroups returns the predefined groups and their weekly schedules.
func DefaultGroups() (domain.Groups, error) {
	data, err := DefaultsFS.ReadFile("defaults/groups.json")
	if err != nil {
		return nil, err
	}
	var g domain.Groups
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse default groups: %w", err)
	}
	return g, nil
}
