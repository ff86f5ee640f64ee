// Package link implements the deferred hard-link table:
// cross-record bookkeeping for new-ascii/new-crc hard-link groups whose
// payload is carried by only one member.
package link

import (
	"fmt"
	"os"

	"github.com/bgrewell/cpio-kit/pkg/header"
	"github.com/go-logr/logr"
)

// Entry is a deferred member: a link that arrived before the group's
// data-carrying record, recorded so it can be materialized later.
type Entry struct {
	Name string
	Mode uint32
	UID  uint32
	GID  uint32
}

// Table tracks deferments per hard-link identity group, plus the first
// materialized path seen for each identity (used by LinkToGroup).
// Construct it with New; the zero value has nil maps and Defer,
// LinkToGroup and OnExtracted panic on it.
type Table struct {
	groups  map[header.Identity][]Entry
	created map[header.Identity]string
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		groups:  make(map[header.Identity][]Entry),
		created: make(map[header.Identity]string),
	}
}

// LinkToGroup implements the cross-link short-circuit used by every
// non-tar dialect with NLink > 1: if an
// earlier member of this identity group has already been materialized,
// hard-link name to it and report linked=true. Otherwise record name as
// the group's materialized path for subsequent members and report
// linked=false, so the caller proceeds to create it as new content.
func (t *Table) LinkToGroup(id header.Identity, name string) (linked bool, err error) {
	if existing, ok := t.created[id]; ok {
		if err := os.Link(existing, name); err != nil {
			return false, fmt.Errorf("link: hard link %s to %s: %w", name, existing, err)
		}
		return true, nil
	}
	t.created[id] = name
	return false, nil
}

// Defer records rec as awaiting its group's data. Called when
// nlink>1 && filesize==0; no stream work happens here beyond what
// the caller has already consumed (header + name + padding).
func (t *Table) Defer(rec *header.Record) {
	id := rec.Identity()
	entry := Entry{Name: rec.Name, Mode: rec.Mode, UID: rec.UID, GID: rec.GID}
	// Prepend so Finalize's LIFO walk (most recently deferred first) is a
	// simple forward scan.
	t.groups[id] = append([]Entry{entry}, t.groups[id]...)
}

// OnExtracted is called once dataPath has been materialized with real
// content for identity id (either a data-carrying record, or a
// redirected skip that landed payload at dataPath). Every deferred
// member of the same group is hard-linked to dataPath and removed from
// the table. Link failures are logged, never fatal.
func (t *Table) OnExtracted(id header.Identity, dataPath string, logger logr.Logger) {
	t.created[id] = dataPath
	list := t.groups[id]
	delete(t.groups, id)
	for _, entry := range list {
		if err := os.Link(dataPath, entry.Name); err != nil {
			logger.Info("failed to create deferred hard link", "warning", true,
				"name", entry.Name, "target", dataPath, "error", err)
		}
	}
}

// TakePending removes and returns the most recently deferred entry for
// id, for redirect_skip to repurpose as the data carrier's name.
func (t *Table) TakePending(id header.Identity) (Entry, bool) {
	list := t.groups[id]
	if len(list) == 0 {
		return Entry{}, false
	}
	entry := list[0]
	t.groups[id] = list[1:]
	return entry, true
}

// Finalize is invoked at end-of-archive. Every still-pending group never
// received data: each of its members is materialized as an empty
// regular file at mode 0600, with the deferred entry's permissions then
// applied. If applying permissions fails, the file is left at 0600 and
// the error only logged, matching create_final_defers' silent
// degradation.
func (t *Table) Finalize(logger logr.Logger) {
	for id, list := range t.groups {
		var created string
		for _, entry := range list {
			if created == "" {
				if err := materializeEmpty(entry, logger); err != nil {
					logger.Info("failed to materialize deferred link as empty file", "warning", true,
						"name", entry.Name, "error", err)
					continue
				}
				created = entry.Name
				continue
			}
			if err := os.Link(created, entry.Name); err != nil {
				logger.Info("failed to create deferred hard link at end of archive", "warning", true,
					"name", entry.Name, "target", created, "error", err)
			}
		}
		delete(t.groups, id)
	}
}

func materializeEmpty(entry Entry, logger logr.Logger) error {
	f, err := os.OpenFile(entry.Name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("link: create placeholder %s: %w", entry.Name, err)
	}
	defer f.Close()
	// chown first: it may clear setuid/setgid bits the chmod then restores.
	if err := f.Chown(int(entry.UID), int(entry.GID)); err != nil {
		logger.Info("failed to set ownership on deferred link placeholder", "warning", true, "name", entry.Name, "error", err)
	}
	if err := f.Chmod(header.PermMode(entry.Mode)); err != nil {
		logger.Info("failed to set mode on deferred link placeholder", "warning", true, "name", entry.Name, "error", err)
	}
	return nil
}
