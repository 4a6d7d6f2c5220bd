package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"actionflow/backend/internal/models"
	"actionflow/backend/internal/storage"
	"actionflow/backend/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, b []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestBuildComplaints(t *testing.T) {
	resolverID := uint(4)
	rating := 5
	feedback := "quick fix"
	updated := time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC)
	complaints := []models.Complaint{
		{
			ComplaintID: "CMP-AB12-0002", Category: "Network", Priority: models.PriorityHigh,
			Status: models.StatusClosed, Description: "router down", ResolverID: &resolverID,
			ResolutionNote: "replaced", Rating: &rating, Feedback: &feedback,
			CreatedAt: time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC), UpdatedAt: &updated,
		},
		{
			ComplaintID: "CMP-AB12-0001", Category: "Water", Priority: models.PriorityLow,
			Status: models.StatusPending, Description: "leak",
			CreatedAt: time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC),
		},
	}

	f, err := BuildComplaints(complaints, map[uint]string{4: "ann"})
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows := readRows(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, ComplaintHeader, rows[0])
	assert.Equal(t, []string{
		"CMP-AB12-0002", "Network", "high", "closed", "router down", "ann", "replaced",
		"5", "quick fix", "2024-02-01 09:30:00", "2024-02-03 10:00:00",
	}, rows[1])
	// trailing empty cells are not returned
	assert.Equal(t, []string{"CMP-AB12-0001", "Water", "low", "pending", "leak", "", "", "", "", "2024-01-31 08:00:00"}, rows[2])
}

func TestExportComplaints(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.Seed(t, db, "ORG-1A2BAB12")
	other := storagetest.Seed(t, db, "ORG-99999999")
	r := storagetest.AddResolver(t, db, fx.Org.ID, "ann", "Network", models.ResolverInactive)
	storagetest.AddComplaint(t, db, fx, models.Complaint{Status: models.StatusInProgress, ResolverID: &r.ID})
	storagetest.AddComplaint(t, db, fx, models.Complaint{})
	storagetest.AddComplaint(t, db, other, models.Complaint{})

	var buf bytes.Buffer
	n, err := ExportComplaints(context.Background(), storage.NewStorageService(db, nil), fx.Org.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := readRows(t, buf.Bytes())
	require.Len(t, rows, 3)
	var resolvers []string
	for _, row := range rows[1:] {
		if len(row) > 5 {
			resolvers = append(resolvers, row[5])
		}
	}
	// inactive resolvers are still named
	assert.Contains(t, resolvers, "ann")
}

type failingStore struct{ storage.Storage }

func (failingStore) ListComplaints(context.Context, storage.ComplaintFilter) ([]models.Complaint, error) {
	return nil, errors.New("boom")
}

func TestExportComplaints_StorageError(t *testing.T) {
	var buf bytes.Buffer
	_, err := ExportComplaints(context.Background(), failingStore{}, 1, &buf)
	assert.EqualError(t, err, "boom")
	assert.Zero(t, buf.Len())
}
