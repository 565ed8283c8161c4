package services_test

import (
	"testing"

	"pluginmarket/internal/models"
	"pluginmarket/internal/repositories"
	"pluginmarket/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll() ([]models.Category, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(id string) (*models.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(category *models.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(category *models.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func TestCatalogService_CreatePlugin(t *testing.T) {
	pluginRepo := repositories.NewMockPluginRepository()
	notifier := new(MockNotifier)
	svc := services.NewCatalogService(pluginRepo, nil, notifier)

	notifier.On("Publish", services.EventNewPlugin, mock.Anything).Return()

	plugin := &models.Plugin{Name: "Snippet Runner", Price: price("9.99")}
	assert.NoError(t, svc.CreatePlugin(plugin))
	assert.NotEmpty(t, plugin.ID)
	assert.Equal(t, models.PluginPending, plugin.Status)

	notifier.AssertExpectations(t)
}

func TestCatalogService_CreatePlugin_NegativePrice(t *testing.T) {
	pluginRepo := repositories.NewMockPluginRepository()
	svc := services.NewCatalogService(pluginRepo, nil, nil)

	err := svc.CreatePlugin(&models.Plugin{Name: "Broken", Price: price("-1.00")})
	assert.ErrorIs(t, err, services.ErrValidation)

	all, err := pluginRepo.GetAll()
	assert.NoError(t, err)
	assert.Empty(t, all)
}

func TestCatalogService_UpdatePlugin_NegativePrice(t *testing.T) {
	pluginRepo := repositories.NewMockPluginRepository()
	svc := services.NewCatalogService(pluginRepo, nil, nil)

	plugin := &models.Plugin{Name: "Snippet Runner", Price: price("9.99")}
	assert.NoError(t, pluginRepo.Create(plugin))

	plugin.Price = price("-0.01")
	assert.ErrorIs(t, svc.UpdatePlugin(plugin), services.ErrValidation)
}

func TestCatalogService_DeletePlugin_WithOrderHistory(t *testing.T) {
	pluginRepo := repositories.NewMockPluginRepository()
	svc := services.NewCatalogService(pluginRepo, nil, nil)

	plugin := &models.Plugin{Name: "Snippet Runner", Price: price("9.99")}
	assert.NoError(t, pluginRepo.Create(plugin))
	pluginRepo.SetOrderItemCount(plugin.ID, 3)

	// A plugin referenced by order lines must stay, so past orders keep
	// resolving their snapshots.
	assert.ErrorIs(t, svc.DeletePlugin(plugin.ID), services.ErrConflict)

	got, err := pluginRepo.GetByID(plugin.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Snippet Runner", got.Name)
}

func TestCatalogService_DeletePlugin(t *testing.T) {
	pluginRepo := repositories.NewMockPluginRepository()
	notifier := new(MockNotifier)
	svc := services.NewCatalogService(pluginRepo, nil, notifier)

	plugin := &models.Plugin{Name: "Snippet Runner", Price: price("9.99")}
	assert.NoError(t, pluginRepo.Create(plugin))
	notifier.On("Publish", services.EventDeletePlugin, mock.Anything).Return()

	assert.NoError(t, svc.DeletePlugin(plugin.ID))

	_, err := pluginRepo.GetByID(plugin.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCatalogService_DeletePlugin_NotFound(t *testing.T) {
	svc := services.NewCatalogService(repositories.NewMockPluginRepository(), nil, nil)
	assert.ErrorIs(t, svc.DeletePlugin("no-such-plugin"), services.ErrNotFound)
}

func TestCatalogService_RecordDownload(t *testing.T) {
	pluginRepo := repositories.NewMockPluginRepository()
	svc := services.NewCatalogService(pluginRepo, nil, nil)

	plugin := &models.Plugin{Name: "Snippet Runner", Price: price("9.99")}
	assert.NoError(t, pluginRepo.Create(plugin))

	assert.NoError(t, svc.RecordDownload(plugin.ID))
	assert.NoError(t, svc.RecordDownload(plugin.ID))

	got, err := pluginRepo.GetByID(plugin.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, got.Downloads)
}

func TestCatalogService_CheckPurchased(t *testing.T) {
	pluginRepo := repositories.NewMockPluginRepository()
	svc := services.NewCatalogService(pluginRepo, nil, nil)

	purchased, err := svc.CheckPurchased("user-1", "plug-1")
	assert.NoError(t, err)
	assert.False(t, purchased)

	pluginRepo.SetPaidOrderCount("user-1", "plug-1", 1)

	purchased, err = svc.CheckPurchased("user-1", "plug-1")
	assert.NoError(t, err)
	assert.True(t, purchased)

	// Another user's purchase does not count.
	purchased, err = svc.CheckPurchased("user-2", "plug-1")
	assert.NoError(t, err)
	assert.False(t, purchased)
}

func TestCatalogService_Categories(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	svc := services.NewCatalogService(repositories.NewMockPluginRepository(), categoryRepo, nil)

	categoryRepo.On("Create", mock.AnythingOfType("*models.Category")).Return(nil)
	categoryRepo.On("GetByID", "cat-1").Return(&models.Category{ID: "cat-1", Name: "Editors"}, nil)
	categoryRepo.On("GetByID", "cat-404").Return(nil, repositories.ErrNotFound)
	categoryRepo.On("Delete", "cat-404").Return(repositories.ErrNotFound)

	assert.NoError(t, svc.CreateCategory(&models.Category{Name: "Editors"}))

	got, err := svc.GetCategoryByID("cat-1")
	assert.NoError(t, err)
	assert.Equal(t, "Editors", got.Name)

	_, err = svc.GetCategoryByID("cat-404")
	assert.ErrorIs(t, err, services.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteCategory("cat-404"), services.ErrNotFound)
	categoryRepo.AssertExpectations(t)
}
