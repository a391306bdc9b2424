package repositories

import "context"

// Repository groups every store the submission service depends on
type Repository interface {
	Page() PageRepository
	Submission() SubmissionRepository
	Membership() MembershipRepository

	// User domain (read-only)
	User() UserRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
