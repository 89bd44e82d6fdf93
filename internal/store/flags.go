package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// disabledKey holds the JSON-encoded list of site IDs switched off by an
// operator. Kept separate from check-in records so clearing history never
// resurrects a disabled site.
const disabledKey = "disabled_sites"

// LoadDisabled returns the persisted set of disabled site IDs.
func LoadDisabled(ctx context.Context, b Backend) ([]string, error) {
	data, err := b.Get(ctx, disabledKey)
	if err != nil {
		return nil, fmt.Errorf("load disabled sites: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode disabled sites: %w", err)
	}
	return ids, nil
}

// SaveDisabled persists the set of disabled site IDs, deduplicated and
// sorted so the stored value is stable.
func SaveDisabled(ctx context.Context, b Backend, ids []string) error {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	sort.Strings(unique)

	data, err := json.Marshal(unique)
	if err != nil {
		return fmt.Errorf("encode disabled sites: %w", err)
	}
	if err := b.Set(ctx, disabledKey, data); err != nil {
		return fmt.Errorf("save disabled sites: %w", err)
	}
	return nil
}

// SetDisabled adds or removes one site ID from the persisted set.
func SetDisabled(ctx context.Context, b Backend, siteID string, disabled bool) error {
	ids, err := LoadDisabled(ctx, b)
	if err != nil {
		return err
	}

	out := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		if id != siteID {
			out = append(out, id)
		}
	}
	if disabled {
		out = append(out, siteID)
	}
	return SaveDisabled(ctx, b, out)
}
