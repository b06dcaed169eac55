package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"shopmart/internal/models"
)

type CategoryRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo CategoryRepository
	ctx  context.Context
}

func (suite *CategoryRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewCategoryRepo(mock)
	suite.ctx = context.Background()
}

func (suite *CategoryRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestCategoryRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryRepoTestSuite))
}

func categoryRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "slug", "description", "parent_id", "level", "path", "created_at", "updated_at"})
}

func (suite *CategoryRepoTestSuite) TestCreate() {
	id := uuid.New()
	category := &models.Category{
		ID:    id,
		Name:  "Electronics",
		Slug:  "electronics",
		Level: 0,
		Path:  id.String(),
	}

	suite.mock.ExpectExec(`INSERT INTO categories`).
		WithArgs(category.ID, category.Name, category.Slug, category.Description,
			category.ParentID, category.Level, category.Path).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(suite.T(), suite.repo.Create(suite.ctx, category))
}

func (suite *CategoryRepoTestSuite) TestGetByID_NotFound() {
	id := uuid.New()
	suite.mock.ExpectQuery(`SELECT .+ FROM categories WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(categoryRows())

	category, err := suite.repo.GetByID(suite.ctx, id)

	assert.Nil(suite.T(), category)
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *CategoryRepoTestSuite) TestGetDescendants_PrefixMatch() {
	rootID := uuid.New()
	root := &models.Category{ID: rootID, Path: rootID.String()}
	childID := uuid.New()
	now := time.Now()

	suite.mock.ExpectQuery(`SELECT .+\s+FROM categories\s+WHERE path LIKE \$1 \|\| '/%'`).
		WithArgs(root.Path).
		WillReturnRows(categoryRows().
			AddRow(childID, "Laptops", "laptops", "", &rootID, 1, root.Path+"/"+childID.String(), now, now))

	descendants, err := suite.repo.GetDescendants(suite.ctx, root)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), descendants, 1)
	assert.Equal(suite.T(), childID, descendants[0].ID)
}

func (suite *CategoryRepoTestSuite) TestReparent_CascadeIsTransactional() {
	oldRootID := uuid.New()
	categoryID := uuid.New()
	newParentID := uuid.New()

	category := &models.Category{
		ID:    categoryID,
		Name:  "Laptops",
		Level: 1,
		Path:  oldRootID.String() + "/" + categoryID.String(),
	}
	newParent := &models.Category{
		ID:    newParentID,
		Name:  "Computers",
		Level: 0,
		Path:  newParentID.String(),
	}
	newPath := newParent.Path + "/" + categoryID.String()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE categories\s+SET parent_id = \$1, level = \$2, path = \$3`).
		WithArgs(&newParentID, 1, newPath, categoryID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE categories\s+SET path = \$1 \|\| substr\(path, char_length\(\$2\) \+ 1\)`).
		WithArgs(newPath, oldRootID.String()+"/"+categoryID.String(), 0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	suite.mock.ExpectCommit()

	err := suite.repo.Reparent(suite.ctx, category, newParent)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), newPath, category.Path)
	assert.Equal(suite.T(), 1, category.Level)
	assert.Equal(suite.T(), &newParentID, category.ParentID)
}

func (suite *CategoryRepoTestSuite) TestReparent_ToRootAdjustsLevels() {
	rootID := uuid.New()
	categoryID := uuid.New()
	category := &models.Category{
		ID:    categoryID,
		Level: 1,
		Path:  rootID.String() + "/" + categoryID.String(),
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE categories\s+SET parent_id = \$1, level = \$2, path = \$3`).
		WithArgs((*uuid.UUID)(nil), 0, categoryID.String(), categoryID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE categories\s+SET path = \$1 \|\| substr`).
		WithArgs(categoryID.String(), category.Path, -1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	suite.mock.ExpectCommit()

	err := suite.repo.Reparent(suite.ctx, category, nil)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, category.Level)
	assert.Equal(suite.T(), categoryID.String(), category.Path)
	assert.Nil(suite.T(), category.ParentID)
}

func (suite *CategoryRepoTestSuite) TestReparent_RollsBackOnCascadeFailure() {
	categoryID := uuid.New()
	category := &models.Category{ID: categoryID, Level: 0, Path: categoryID.String()}
	newParentID := uuid.New()
	newParent := &models.Category{ID: newParentID, Level: 0, Path: newParentID.String()}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE categories\s+SET parent_id`).
		WithArgs(&newParentID, 1, newParent.Path+"/"+categoryID.String(), categoryID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE categories\s+SET path = \$1 \|\| substr`).
		WithArgs(newParent.Path+"/"+categoryID.String(), categoryID.String(), 1).
		WillReturnError(assert.AnError)
	suite.mock.ExpectRollback()

	err := suite.repo.Reparent(suite.ctx, category, newParent)

	assert.Error(suite.T(), err)
	// In-memory fields stay at their pre-move values.
	assert.Equal(suite.T(), categoryID.String(), category.Path)
	assert.Equal(suite.T(), 0, category.Level)
}

func (suite *CategoryRepoTestSuite) TestDeleteSubtree() {
	id := uuid.New()
	category := &models.Category{ID: id, Path: id.String()}

	suite.mock.ExpectExec(`DELETE FROM categories WHERE id = \$1 OR path LIKE \$2 \|\| '/%'`).
		WithArgs(category.ID, category.Path).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	assert.NoError(suite.T(), suite.repo.DeleteSubtree(suite.ctx, category))
}
