package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalogapi/internal/apperror"
	"catalogapi/internal/model"
	"catalogapi/internal/query"
	"catalogapi/internal/repository"
	repoMocks "catalogapi/internal/repository/mocks"
)

var testDefaults = query.Defaults{Page: 1, PageSize: 100}

func TestRegionService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRecordRepository[model.Region])
	svc := NewRegionService(repo, testDefaults)

	repo.On("List", ctx, mock.MatchedBy(func(p query.Plan) bool {
		return len(p.Filters) == 1 && p.Filters[0].Field == "name" &&
			p.Direction == query.Descending && p.Page == 1 && p.PageSize == 100
	})).Return([]model.Region{{ID: 2, Code: "B", Name: "North"}}, 1, nil)

	page, err := svc.List(ctx, query.Params{"name": "North", "code": "A", "ordering": "desc", "page": "x"})

	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	repo.AssertExpectations(t)
}

func TestRegionService_ListStoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRecordRepository[model.Region])
	svc := NewRegionService(repo, testDefaults)

	repo.On("List", ctx, mock.Anything).Return(nil, 0, errors.New("db down"))

	_, err := svc.List(ctx, query.Params{})
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
}

func TestRegionService_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		repoErr error
		wantErr error
		field   string
	}{
		{name: "not found", repoErr: sql.ErrNoRows, wantErr: apperror.ErrNotFound},
		{name: "duplicate code", repoErr: fmt.Errorf("%w: regions_code_key", repository.ErrDuplicate), wantErr: apperror.ErrValidation, field: "code"},
		{name: "check constraint", repoErr: fmt.Errorf("%w: regions_code_check", repository.ErrCheck), wantErr: apperror.ErrValidation, field: "non_field_errors"},
		{name: "store failure", repoErr: errors.New("boom"), wantErr: apperror.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockRecordRepository[model.Region])
			svc := NewRegionService(repo, testDefaults)
			repo.On("Update", ctx, mock.AnythingOfType("*model.Region")).Return(nil, tt.repoErr)

			_, err := svc.Update(ctx, 7, &model.Region{Code: "N", Name: "North"})

			assert.ErrorIs(t, err, tt.wantErr)
			if tt.field != "" {
				var verr *apperror.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Contains(t, verr.Fields, tt.field)
			}
		})
	}
}

func TestRegionService_UpdateSetsID(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRecordRepository[model.Region])
	svc := NewRegionService(repo, testDefaults)

	repo.On("Update", ctx, &model.Region{ID: 7, Code: "N", Name: "North"}).
		Return(&model.Region{ID: 7, Code: "N", Name: "North"}, nil)

	out, err := svc.Update(ctx, 7, &model.Region{ID: 99, Code: "N", Name: "North"})

	require.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
	repo.AssertExpectations(t)
}

func TestRegionService_CreateValidates(t *testing.T) {
	repo := new(repoMocks.MockRecordRepository[model.Region])
	svc := NewRegionService(repo, testDefaults)

	_, err := svc.Create(context.Background(), &model.Region{Code: "TOOLONG", Name: ""})

	assert.ErrorIs(t, err, apperror.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPatronService_FilterPriority(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRecordRepository[model.Patron])
	svc := NewPatronService(repo, query.Defaults{Page: 1, PageSize: 20})

	repo.On("List", ctx, query.Plan{
		Kind:      query.KindPatron,
		Filters:   []query.Clause{{Field: "first_name", Value: "Jane"}},
		SortField: "birthday",
		Page:      1,
		PageSize:  20,
	}).Return([]model.Patron{{ID: 1, FirstName: "Jane"}}, 1, nil)

	page, err := svc.List(ctx, query.Params{"first_name": "Jane", "birthday": "1990-01-01"})

	require.NoError(t, err)
	assert.Equal(t, "Jane", page.Results[0].FirstName)
	repo.AssertExpectations(t)
}

func TestPatronService_MalformedDateFilter(t *testing.T) {
	repo := new(repoMocks.MockRecordRepository[model.Patron])
	svc := NewPatronService(repo, testDefaults)

	_, err := svc.List(context.Background(), query.Params{"birthday": "01/01/1990"})

	assert.ErrorIs(t, err, apperror.ErrValidation)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestPublisherService_MissingRegion(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRecordRepository[model.Publisher])
	svc := NewPublisherService(repo, testDefaults)

	repo.On("Create", ctx, mock.AnythingOfType("*model.Publisher")).
		Return(nil, fmt.Errorf("%w: publishers_region_id_fkey", repository.ErrReference))

	_, err := svc.Create(ctx, &model.Publisher{Name: "Acme", RegionID: 42})

	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "does not exist", verr.Fields["region"])
}

func TestPublisherService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRecordRepository[model.Publisher])
	svc := NewPublisherService(repo, testDefaults)

	repo.On("Delete", ctx, int64(1)).Return(nil)
	repo.On("Delete", ctx, int64(2)).Return(sql.ErrNoRows)

	assert.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 2), apperror.ErrNotFound)
}
