package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"adpnorm/internal/domain"
	"adpnorm/internal/service"
	"adpnorm/mocks"
)

func runWorker(t *testing.T, worker *service.JobQueueWorker, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()
	time.Sleep(d)
	cancel()
	<-done
}

func TestJobQueueWorker_PollsAndDispatches(t *testing.T) {
	jobRepo := new(mocks.MockJobRepo)
	jobSvc := new(mocks.MockJobService)

	job := domain.Job{ID: uuid.New(), Status: domain.JobStatusProcessing, Attempts: 1}

	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Job{job}, nil).Once()
	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Job{}, nil).Maybe()
	jobSvc.On("ProcessJob", mock.Anything, mock.MatchedBy(func(j *domain.Job) bool {
		return j.ID == job.ID && j.Attempts == 1
	}), 5).Return()

	worker := service.NewJobQueueWorker(jobRepo, jobSvc, service.JobQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   5,
		Concurrency:  2,
	})
	runWorker(t, worker, 200*time.Millisecond)

	jobSvc.AssertNumberOfCalls(t, "ProcessJob", 1)
}

func TestJobQueueWorker_ClaimsUpToConcurrency(t *testing.T) {
	jobRepo := new(mocks.MockJobRepo)
	jobSvc := new(mocks.MockJobService)

	jobRepo.On("ClaimQueued", mock.Anything, 3).Return([]domain.Job{}, nil)

	worker := service.NewJobQueueWorker(jobRepo, jobSvc, service.JobQueueConfig{
		PollInterval: 30 * time.Millisecond,
		MaxRetries:   5,
		Concurrency:  3,
	})
	runWorker(t, worker, 120*time.Millisecond)

	jobRepo.AssertCalled(t, "ClaimQueued", mock.Anything, 3)
	jobSvc.AssertNotCalled(t, "ProcessJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestJobQueueWorker_WaitsForInFlightJobs(t *testing.T) {
	jobRepo := new(mocks.MockJobRepo)
	jobSvc := new(mocks.MockJobService)

	job := domain.Job{ID: uuid.New(), Attempts: 1}
	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Job{job}, nil).Once()
	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Job{}, nil).Maybe()

	finished := make(chan struct{})
	jobSvc.On("ProcessJob", mock.Anything, mock.Anything, 5).
		Run(func(mock.Arguments) {
			time.Sleep(150 * time.Millisecond)
			close(finished)
		}).Return()

	worker := service.NewJobQueueWorker(jobRepo, jobSvc, service.JobQueueConfig{
		PollInterval: 20 * time.Millisecond,
		MaxRetries:   5,
		Concurrency:  1,
	})
	runWorker(t, worker, 60*time.Millisecond)

	select {
	case <-finished:
	default:
		t.Fatal("Start returned before the in-flight job finished")
	}
	jobSvc.AssertExpectations(t)
}
