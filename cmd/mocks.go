package cmd

// This file contains mock implementations used across different test files
// within the cmd package, but which need to be accessible from outside
// _test.go files (e.g., for integration tests).

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/karolswdev/workitron/internal/azdo"
	"github.com/karolswdev/workitron/internal/llm"
)

// --- Mock LLMClient ---

// MockLLMClient is a mock implementation of the llm.Client interface.
// Exported for use in integration tests.
type MockLLMClient struct {
	mock.Mock // Implements llm.Client
}

// GenerateWorkItemDetails matches llm.Client interface
func (m *MockLLMClient) GenerateWorkItemDetails(ctx context.Context, userInput, systemPrompt, contextContent string) (llm.Suggestion, error) {
	args := m.Called(ctx, userInput, systemPrompt, contextContent)
	respArg := args.Get(0)
	var resp llm.Suggestion
	if respArg != nil {
		resp = respArg.(llm.Suggestion)
	}
	return resp, args.Error(1)
}

// --- Mock Gateway ---

// MockGateway is a mock implementation of the Gateway interface.
// Exported for use in integration tests.
type MockGateway struct {
	mock.Mock // Implements Gateway
}

// Create matches Gateway interface
func (m *MockGateway) Create(ctx context.Context, workItemType string, fields azdo.CreateFields, parentID *int) (*azdo.WorkItem, error) {
	args := m.Called(ctx, workItemType, fields, parentID)
	item, _ := args.Get(0).(*azdo.WorkItem)
	return item, args.Error(1)
}

// Update matches Gateway interface
func (m *MockGateway) Update(ctx context.Context, id int, ops []azdo.Operation) (*azdo.WorkItem, error) {
	args := m.Called(ctx, id, ops)
	item, _ := args.Get(0).(*azdo.WorkItem)
	return item, args.Error(1)
}

// Get matches Gateway interface
func (m *MockGateway) Get(ctx context.Context, id int) (*azdo.WorkItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*azdo.WorkItem)
	return item, args.Error(1)
}

// List matches Gateway interface
func (m *MockGateway) List(ctx context.Context, f azdo.Filter) ([]azdo.WorkItem, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]azdo.WorkItem)
	return items, args.Error(1)
}

// ParentRelationOp matches Gateway interface
func (m *MockGateway) ParentRelationOp(parentID int) azdo.Operation {
	args := m.Called(parentID)
	op, _ := args.Get(0).(azdo.Operation)
	return op
}
