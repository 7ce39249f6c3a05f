package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"todo/internal/credentials"
	"todo/internal/models"
	"todo/internal/repositories"
)

// TaskService handles task CRUD. Every operation is scoped to the caller.
type TaskService struct {
	tasks  repositories.Repository[models.Task]
	events EventPublisher
}

// NewTaskService creates a new TaskService. events may be nil.
func NewTaskService(tasks repositories.Repository[models.Task], events EventPublisher) *TaskService {
	return &TaskService{
		tasks:  tasks,
		events: events,
	}
}

// Create stores a new task owned by the caller.
func (s *TaskService) Create(ctx context.Context, caller credentials.Identity, in TaskInput) (*TaskDTO, error) {
	if err := checkTitle(in.Title); err != nil {
		return nil, err
	}

	description := in.Description
	if description == "" {
		description = models.DefaultTaskDescription
	}

	task := &models.Task{
		Title:       in.Title,
		Description: description,
		UserID:      caller.ID,
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		// The token outlived its account.
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	dto := toTaskDTO(task)
	publish(ctx, s.events, EventTaskCreated, taskEvent(caller, dto))
	return &dto, nil
}

// List returns the caller's tasks ordered by id.
func (s *TaskService) List(ctx context.Context, caller credentials.Identity) ([]TaskDTO, error) {
	tasks, err := s.tasks.FindAll(ctx, repositories.Query{
		Select: []string{"id", "title"},
		Where:  map[string]any{"userId": caller.ID},
		Order:  "id asc",
	})
	if err != nil {
		return nil, err
	}

	out := make([]TaskDTO, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskDTO(&tasks[i]))
	}
	return out, nil
}

// Get returns one of the caller's tasks.
func (s *TaskService) Get(ctx context.Context, caller credentials.Identity, id uint) (*TaskDTO, error) {
	task, err := s.findOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	dto := toTaskDTO(task)
	return &dto, nil
}

// Update edits one of the caller's tasks. The description only changes when supplied.
func (s *TaskService) Update(ctx context.Context, caller credentials.Identity, id uint, in TaskInput) (*TaskDTO, error) {
	if err := checkTitle(in.Title); err != nil {
		return nil, err
	}
	if _, err := s.findOwned(ctx, caller, id); err != nil {
		return nil, err
	}

	patch := map[string]any{"title": in.Title}
	if in.Description != "" {
		patch["description"] = in.Description
	}

	task, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	dto := toTaskDTO(task)
	publish(ctx, s.events, EventTaskUpdated, taskEvent(caller, dto))
	return &dto, nil
}

// Delete removes one of the caller's tasks and returns what was removed.
func (s *TaskService) Delete(ctx context.Context, caller credentials.Identity, id uint) (*TaskDTO, error) {
	task, err := s.findOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	dto := toTaskDTO(task)
	publish(ctx, s.events, EventTaskDeleted, taskEvent(caller, dto))
	return &dto, nil
}

func (s *TaskService) findOwned(ctx context.Context, caller credentials.Identity, id uint) (*models.Task, error) {
	task, err := s.tasks.FindOne(ctx, repositories.Query{
		Where: map[string]any{"id": id, "userId": caller.ID},
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func checkTitle(title string) error {
	if utf8.RuneCountInString(strings.TrimSpace(title)) < models.MinTaskTitleLength {
		return ErrInvalidTitle
	}
	return nil
}

func taskEvent(caller credentials.Identity, task TaskDTO) map[string]any {
	return map[string]any{
		"task_id": task.ID,
		"title":   task.Title,
		"user_id": caller.ID,
	}
}
