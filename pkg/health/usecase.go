package health

import (
	"context"
	"fmt"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Ready(ctx context.Context) error
}

// DependencyError names the checker that failed.
type DependencyError struct {
	Name string
	Err  error
}

func (e *DependencyError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }
func (e *DependencyError) Unwrap() error { return e.Err }

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers. The first failure wins.
func NewService(checkers ...Checker) ReadinessUseCase {
	return &service{checkers: checkers}
}

func (s *service) Ready(ctx context.Context) error {
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			return &DependencyError{Name: ch.Name(), Err: err}
		}
	}
	return nil
}
