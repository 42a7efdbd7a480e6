package favorites

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"wondash/server/internal/models"
)

var (
	ErrDuplicateFavorite = errors.New("favorite already exists")
	ErrFavoriteNotFound  = errors.New("favorite not found")
)

// Directory is the ordered collection of watched apartment complexes.
// Identity is the stable ID; uniqueness is enforced on (lawd_cd, apt_name).
type Directory struct {
	mu      sync.Mutex
	entries []models.FavoriteAsset
}

// NewDirectory builds a directory from persisted entries. Entries written
// before IDs existed are assigned one here; the second return value reports
// whether any entry was migrated so the caller can persist the new IDs.
func NewDirectory(entries []models.FavoriteAsset) (*Directory, bool) {
	migrated := false
	list := make([]models.FavoriteAsset, len(entries))
	copy(list, entries)
	for i := range list {
		if list[i].ID == "" {
			list[i].ID = uuid.NewString()
			migrated = true
		}
	}
	return &Directory{entries: list}, migrated
}

// Add appends a new favorite. Duplicate (lawd_cd, apt_name) pairs are
// rejected, not merged.
func (d *Directory) Add(lawdCd, regionName, aptName string) (models.FavoriteAsset, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range d.entries {
		if e.LawdCd == lawdCd && e.AptName == aptName {
			return models.FavoriteAsset{}, ErrDuplicateFavorite
		}
	}

	entry := models.FavoriteAsset{
		ID:         uuid.NewString(),
		LawdCd:     lawdCd,
		RegionName: regionName,
		AptName:    aptName,
	}
	d.entries = append(d.entries, entry)
	return entry, nil
}

// RemoveByID deletes the entry with the given id. Other entries keep their
// identity and relative order.
func (d *Directory) RemoveByID(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, e := range d.entries {
		if e.ID == id {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			return nil
		}
	}
	return ErrFavoriteNotFound
}

// RemoveAt deletes by visible list position. The index is resolved to an id
// at this boundary; nothing internal is positional.
func (d *Directory) RemoveAt(index int) error {
	d.mu.Lock()
	if index < 0 || index >= len(d.entries) {
		d.mu.Unlock()
		return ErrFavoriteNotFound
	}
	id := d.entries[index].ID
	d.mu.Unlock()

	return d.RemoveByID(id)
}

// List returns the favorites in insertion order.
func (d *Directory) List() []models.FavoriteAsset {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.FavoriteAsset, len(d.entries))
	copy(out, d.entries)
	return out
}

// Len returns the number of favorites.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
