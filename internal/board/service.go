package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"duelist/internal/storage"
	"duelist/internal/task"
)

// Service performs store round trips for user actions. It never touches a
// List; callers apply the returned results once the call succeeds.
type Service struct {
	store storage.Store
	log   *log.Entry
	loc   *time.Location
}

func NewService(store storage.Store, logger *log.Entry) *Service {
	return &Service{store: store, log: logger, loc: time.Local}
}

// Load fetches the whole collection.
func (s *Service) Load(ctx context.Context) ([]task.Task, error) {
	tasks, err := s.store.ListAll(ctx)
	if err != nil {
		s.log.WithError(err).Error("load tasks")
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	s.log.WithField("count", len(tasks)).Debug("loaded tasks")
	return tasks, nil
}

// Add validates the draft and inserts it. Validation errors are returned
// before any store call.
func (s *Service) Add(ctx context.Context, d task.Draft) (task.Task, error) {
	fields, err := d.Fields(s.loc)
	if err != nil {
		return task.Task{}, err
	}
	id, err := s.store.Insert(ctx, fields)
	if err != nil {
		s.log.WithError(err).Error("insert task")
		return task.Task{}, fmt.Errorf("add task: %w", err)
	}
	s.log.WithField("id", id).Info("task added")
	return fields.WithID(id), nil
}

// Edit validates the draft and writes text, deadline, description and
// priority. Completion is not written. The returned patch holds exactly the
// confirmed fields, so callers merge it into whatever their copy of the task
// has become since the form opened.
func (s *Service) Edit(ctx context.Context, id string, d task.Draft) (task.Patch, error) {
	fields, err := d.Fields(s.loc)
	if err != nil {
		return task.Patch{}, err
	}
	patch := task.Patch{
		Text:        &fields.Text,
		Deadline:    &fields.Deadline,
		Description: &fields.Description,
		Priority:    &fields.Priority,
	}
	if err := s.store.UpdateFields(ctx, id, patch); err != nil {
		s.log.WithError(err).WithField("id", id).Error("update task")
		return task.Patch{}, fmt.Errorf("edit task: %w", err)
	}
	s.log.WithField("id", id).Info("task edited")
	return patch, nil
}

// SetCompleted writes the completion flag.
func (s *Service) SetCompleted(ctx context.Context, id string, completed bool) error {
	if err := s.store.UpdateFields(ctx, id, task.Patch{Completed: &completed}); err != nil {
		s.log.WithError(err).WithField("id", id).Error("toggle task")
		return fmt.Errorf("update task: %w", err)
	}
	s.log.WithFields(log.Fields{"id": id, "completed": completed}).Info("task toggled")
	return nil
}

// Delete removes one task. A task already gone from the store counts as
// deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.WithField("id", id).Warn("task already deleted")
		return nil
	}
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("delete task")
		return fmt.Errorf("delete task: %w", err)
	}
	s.log.WithField("id", id).Info("task deleted")
	return nil
}

// DeleteMany issues one delete per id concurrently and waits for all of
// them. It returns the ids that were deleted, whatever happened to their
// siblings, and the joined errors of the failures. No ids means no calls.
func (s *Service) DeleteMany(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Delete(ctx, id)
		}()
	}
	wg.Wait()

	deleted := make([]string, 0, len(ids))
	for i, id := range ids {
		if errs[i] == nil {
			deleted = append(deleted, id)
		}
	}
	err := errors.Join(errs...)
	s.log.WithFields(log.Fields{"requested": len(ids), "deleted": len(deleted)}).Info("bulk delete")
	return deleted, err
}
