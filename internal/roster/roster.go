// Package roster loads the operator-supplied inputs: the member list to
// track and the optional kata catalog to match completions against.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/evmartin/katatrack/internal/codewars"
)

// Member is one tracked user from the input list. FullName is optional;
// when empty the profile's display name is used instead.
type Member struct {
	Username codewars.Username
	FullName string
}

// CatalogEntry pairs a kata's display name with its id. Catalog order
// defines report column order.
type CatalogEntry struct {
	Name   string
	KataID codewars.KataID
}

// LoadMembers reads a CSV with a header row containing at least
// "username" and "fullname" columns.
func LoadMembers(path string) ([]Member, error) {
	f, err := os.Open(path) // #nosec G304 - operator-chosen input file
	if err != nil {
		return nil, fmt.Errorf("open members file: %w", err)
	}
	defer func() { _ = f.Close() }()
	members, err := ReadMembers(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return members, nil
}

// ReadMembers parses the member CSV from r.
func ReadMembers(r io.Reader) ([]Member, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	userCol, nameCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "username":
			userCol = i
		case "fullname":
			nameCol = i
		}
	}
	if userCol == -1 {
		return nil, fmt.Errorf("missing username column in header %v", header)
	}

	var members []Member
	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read row: %w", readErr)
		}
		username := strings.TrimSpace(row[userCol])
		if username == "" {
			continue
		}
		member := Member{Username: codewars.Username(username)}
		if nameCol >= 0 && nameCol < len(row) {
			member.FullName = strings.TrimSpace(row[nameCol])
		}
		members = append(members, member)
	}
	return members, nil
}

// LoadCatalog reads a CSV of (displayName, kataId) rows, skipping the
// header row. Ids are matched positionally; duplicates are allowed.
func LoadCatalog(path string) ([]CatalogEntry, error) {
	f, err := os.Open(path) // #nosec G304 - operator-chosen input file
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()
	entries, err := ReadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return entries, nil
}

// ReadCatalog parses the catalog CSV from r.
func ReadCatalog(r io.Reader) ([]CatalogEntry, error) {
	reader := csv.NewReader(r)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var entries []CatalogEntry
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("catalog row needs name and kata id, got %v", row)
		}
		id := strings.TrimSpace(row[1])
		if id == "" {
			continue
		}
		entries = append(entries, CatalogEntry{
			Name:   strings.TrimSpace(row[0]),
			KataID: codewars.KataID(id),
		})
	}
	return entries, nil
}

// IDs projects the catalog onto its kata ids, preserving order.
func IDs(entries []CatalogEntry) []codewars.KataID {
	ids := make([]codewars.KataID, len(entries))
	for i, entry := range entries {
		ids[i] = entry.KataID
	}
	return ids
}
