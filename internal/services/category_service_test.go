package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"shopmart/internal/models"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetAncestors(ctx context.Context, category *models.Category) ([]*models.Category, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetDescendants(ctx context.Context, category *models.Category) ([]*models.Category, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Reparent(ctx context.Context, category *models.Category, newParent *models.Category) error {
	args := m.Called(ctx, category, newParent)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteSubtree(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	args := m.Called(ctx, product, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockCacheService) GetCategory(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCacheService) SetCategory(ctx context.Context, category *models.Category, ttl time.Duration) error {
	args := m.Called(ctx, category, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateCategories(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type CategoryServiceTestSuite struct {
	suite.Suite
	repo    *MockCategoryRepository
	cache   *MockCacheService
	service CategoryService
	ctx     context.Context
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	suite.repo = &MockCategoryRepository{}
	suite.cache = &MockCacheService{}
	suite.service = NewCategoryService(suite.repo, suite.cache)
	suite.ctx = context.Background()
}

func (suite *CategoryServiceTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}

func (suite *CategoryServiceTestSuite) TestCreate_Root() {
	suite.repo.On("GetByName", suite.ctx, "Electronics").Return(nil, models.ErrNotFound)
	suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*models.Category")).Return(nil)

	category, err := suite.service.Create(suite.ctx, &CreateCategoryRequest{Name: "Electronics"})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, category.Level)
	assert.Nil(suite.T(), category.ParentID)
	assert.Equal(suite.T(), category.ID.String(), category.Path)
	assert.Equal(suite.T(), "electronics", category.Slug)
}

func (suite *CategoryServiceTestSuite) TestCreate_Child() {
	parent := &models.Category{ID: uuid.New(), Name: "Electronics", Level: 0}
	parent.Path = parent.ID.String()

	suite.repo.On("GetByName", suite.ctx, "Laptops").Return(nil, models.ErrNotFound)
	suite.repo.On("GetByID", suite.ctx, parent.ID).Return(parent, nil)
	suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*models.Category")).Return(nil)

	category, err := suite.service.Create(suite.ctx, &CreateCategoryRequest{
		Name:     "Laptops",
		ParentID: &parent.ID,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, category.Level)
	assert.Equal(suite.T(), parent.Path+"/"+category.ID.String(), category.Path)
}

func (suite *CategoryServiceTestSuite) TestCreate_DuplicateName() {
	existing := &models.Category{ID: uuid.New(), Name: "Electronics"}
	suite.repo.On("GetByName", suite.ctx, "Electronics").Return(existing, nil)

	category, err := suite.service.Create(suite.ctx, &CreateCategoryRequest{Name: "Electronics"})

	assert.Nil(suite.T(), category)
	assert.True(suite.T(), models.IsValidation(err))
	suite.repo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *CategoryServiceTestSuite) TestCreate_MissingParent() {
	parentID := uuid.New()
	suite.repo.On("GetByName", suite.ctx, "Laptops").Return(nil, models.ErrNotFound)
	suite.repo.On("GetByID", suite.ctx, parentID).Return(nil, models.ErrNotFound)

	category, err := suite.service.Create(suite.ctx, &CreateCategoryRequest{
		Name:     "Laptops",
		ParentID: &parentID,
	})

	assert.Nil(suite.T(), category)
	assert.True(suite.T(), models.IsValidation(err))
}

func (suite *CategoryServiceTestSuite) TestCreate_EmptyName() {
	category, err := suite.service.Create(suite.ctx, &CreateCategoryRequest{})

	assert.Nil(suite.T(), category)
	assert.True(suite.T(), models.IsValidation(err))
}

func (suite *CategoryServiceTestSuite) TestGetByID_CacheHit() {
	cached := &models.Category{ID: uuid.New(), Name: "Cached"}
	suite.cache.On("GetCategory", suite.ctx, cached.ID).Return(cached, nil)

	category, err := suite.service.GetByID(suite.ctx, cached.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, category)
	suite.repo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *CategoryServiceTestSuite) TestGetByID_CacheMiss() {
	stored := &models.Category{ID: uuid.New(), Name: "Stored"}
	suite.cache.On("GetCategory", suite.ctx, stored.ID).Return(nil, nil)
	suite.repo.On("GetByID", suite.ctx, stored.ID).Return(stored, nil)
	suite.cache.On("SetCategory", suite.ctx, stored, mock.Anything).Return(nil)

	category, err := suite.service.GetByID(suite.ctx, stored.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), stored, category)
}

func (suite *CategoryServiceTestSuite) TestReparent_SelfParent() {
	category := &models.Category{ID: uuid.New(), Name: "Electronics"}
	category.Path = category.ID.String()
	suite.repo.On("GetByID", suite.ctx, category.ID).Return(category, nil)

	updated, err := suite.service.Reparent(suite.ctx, category.ID, &category.ID)

	assert.Nil(suite.T(), updated)
	assert.True(suite.T(), models.IsValidation(err))
	suite.repo.AssertNotCalled(suite.T(), "Reparent", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CategoryServiceTestSuite) TestReparent_UnderOwnDescendantRejected() {
	category := &models.Category{ID: uuid.New(), Name: "Electronics"}
	category.Path = category.ID.String()
	descendant := &models.Category{ID: uuid.New(), Name: "Laptops", Level: 1}
	descendant.Path = category.Path + "/" + descendant.ID.String()

	suite.repo.On("GetByID", suite.ctx, category.ID).Return(category, nil)
	suite.repo.On("GetByID", suite.ctx, descendant.ID).Return(descendant, nil)

	updated, err := suite.service.Reparent(suite.ctx, category.ID, &descendant.ID)

	assert.Nil(suite.T(), updated)
	assert.True(suite.T(), models.IsValidation(err))
	suite.repo.AssertNotCalled(suite.T(), "Reparent", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CategoryServiceTestSuite) TestReparent_Success() {
	category := &models.Category{ID: uuid.New(), Name: "Laptops", Level: 0}
	category.Path = category.ID.String()
	newParent := &models.Category{ID: uuid.New(), Name: "Electronics", Level: 0}
	newParent.Path = newParent.ID.String()

	suite.repo.On("GetByID", suite.ctx, category.ID).Return(category, nil)
	suite.repo.On("GetByID", suite.ctx, newParent.ID).Return(newParent, nil)
	suite.repo.On("Reparent", suite.ctx, category, newParent).Return(nil)
	suite.cache.On("InvalidateCategories", suite.ctx).Return(nil)

	updated, err := suite.service.Reparent(suite.ctx, category.ID, &newParent.ID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), updated)
}

func (suite *CategoryServiceTestSuite) TestReparent_ToRoot() {
	category := &models.Category{ID: uuid.New(), Name: "Laptops", Level: 2}
	suite.repo.On("GetByID", suite.ctx, category.ID).Return(category, nil)
	suite.repo.On("Reparent", suite.ctx, category, (*models.Category)(nil)).Return(nil)
	suite.cache.On("InvalidateCategories", suite.ctx).Return(nil)

	updated, err := suite.service.Reparent(suite.ctx, category.ID, nil)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), updated)
}

func (suite *CategoryServiceTestSuite) TestTree_NestsChildren() {
	root := &models.Category{ID: uuid.New(), Name: "Electronics", Level: 0}
	root.Path = root.ID.String()
	child := &models.Category{ID: uuid.New(), Name: "Laptops", Level: 1, ParentID: &root.ID}
	child.Path = root.Path + "/" + child.ID.String()
	grandchild := &models.Category{ID: uuid.New(), Name: "Gaming", Level: 2, ParentID: &child.ID}
	grandchild.Path = child.Path + "/" + grandchild.ID.String()

	// Repository returns level/path order: parents before children.
	suite.repo.On("List", suite.ctx, mock.Anything, 0).
		Return([]*models.Category{root, child, grandchild}, nil)

	roots, err := suite.service.Tree(suite.ctx)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), roots, 1)
	assert.Len(suite.T(), roots[0].Children, 1)
	assert.Len(suite.T(), roots[0].Children[0].Children, 1)
	assert.Equal(suite.T(), "Gaming", roots[0].Children[0].Children[0].Name)
}

func (suite *CategoryServiceTestSuite) TestDelete_Subtree() {
	category := &models.Category{ID: uuid.New(), Name: "Electronics"}
	category.Path = category.ID.String()

	suite.repo.On("GetByID", suite.ctx, category.ID).Return(category, nil)
	suite.repo.On("DeleteSubtree", suite.ctx, category).Return(nil)
	suite.cache.On("InvalidateCategories", suite.ctx).Return(nil)

	err := suite.service.Delete(suite.ctx, category.ID)

	assert.NoError(suite.T(), err)
}
