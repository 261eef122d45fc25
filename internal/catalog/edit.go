package catalog

import (
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
)

// update applies fn to the stored record under the write lock, stamps the
// edit date and returns the new value.
func (idx *Index) update(id string, fn func(rec *model.MediaRecord)) (model.MediaRecord, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	rec, ok := idx.records[id]
	if !ok {
		return model.MediaRecord{}, ErrNotFound
	}
	rec = rec.Clone()
	fn(&rec)
	rec.Tags = model.DedupeTags(rec.Tags)
	rec.Touch(idx.now())
	idx.setLocked(rec)
	return rec.Clone(), nil
}

// SetTags replaces a record's tags.
func (idx *Index) SetTags(id string, tags []string) (model.MediaRecord, error) {
	clean := model.CleanTags(tags)
	return idx.update(id, func(rec *model.MediaRecord) {
		rec.Tags = clean
		idx.recent.Push(clean...)
	})
}

// AddTag appends one tag if the record does not have it yet.
func (idx *Index) AddTag(id, tag string) (model.MediaRecord, error) {
	clean := model.CleanTags([]string{tag})
	return idx.update(id, func(rec *model.MediaRecord) {
		rec.Tags = append(rec.Tags, clean...)
		idx.recent.Push(clean...)
	})
}

// RemoveTag drops tag from a record.
func (idx *Index) RemoveTag(id, tag string) (model.MediaRecord, error) {
	return idx.update(id, func(rec *model.MediaRecord) {
		kept := rec.Tags[:0]
		for _, t := range rec.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		rec.Tags = kept
	})
}

// SetTitle changes a record's display title.
func (idx *Index) SetTitle(id, title string) (model.MediaRecord, error) {
	return idx.update(id, func(rec *model.MediaRecord) {
		rec.Title = title
	})
}

// SetDescription changes a record's description.
func (idx *Index) SetDescription(id, description string) (model.MediaRecord, error) {
	return idx.update(id, func(rec *model.MediaRecord) {
		rec.Description = description
	})
}

// Rename moves a record to a new path, keeping its id. Another record
// already stored at newPath is replaced.
func (idx *Index) Rename(oldPath, newPath string) (model.MediaRecord, bool) {
	oldPath = mediatypes.ToSlash(oldPath)
	newPath = mediatypes.ToSlash(newPath)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	id, ok := idx.byPath[oldPath]
	if !ok {
		return model.MediaRecord{}, false
	}
	rec := idx.records[id].Clone()
	rec.Path = newPath
	idx.setLocked(rec)
	return rec.Clone(), true
}
