package firestore

import (
	"context"
	"sort"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fuelrats/ratboard/pkg/domain/model"
)

type caseRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCaseRepository(client *firestore.Client) *caseRepository {
	return &caseRepository{client: client}
}

func (r *caseRepository) casesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_cases"
	}
	return "cases"
}

func (r *caseRepository) archiveCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_archive"
	}
	return "archive"
}

func (r *caseRepository) Save(ctx context.Context, c *model.Case) error {
	docID := strconv.Itoa(c.ID)
	if _, err := r.client.Collection(r.casesCollection()).Doc(docID).Set(ctx, c); err != nil {
		return goerr.Wrap(err, "failed to save case", goerr.V("case_id", c.ID))
	}
	return nil
}

func (r *caseRepository) ListOpen(ctx context.Context) ([]*model.Case, error) {
	iter := r.client.Collection(r.casesCollection()).Documents(ctx)
	defer iter.Stop()

	var cases []*model.Case
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate cases")
		}

		var c model.Case
		if err := docSnap.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case", goerr.V("doc_id", docSnap.Ref.ID))
		}

		cases = append(cases, &c)
	}

	sort.Slice(cases, func(i, j int) bool {
		if cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].ID < cases[j].ID
		}
		return cases[i].CreatedAt.Before(cases[j].CreatedAt)
	})

	return cases, nil
}

func (r *caseRepository) Archive(ctx context.Context, c *model.Case) error {
	if c.ArchiveID == "" {
		return goerr.New("archive ID is required", goerr.V("case_id", c.ID))
	}

	if _, err := r.client.Collection(r.archiveCollection()).Doc(c.ArchiveID).Set(ctx, c); err != nil {
		return goerr.Wrap(err, "failed to archive case",
			goerr.V("case_id", c.ID), goerr.V("archive_id", c.ArchiveID))
	}
	return nil
}

func (r *caseRepository) Delete(ctx context.Context, id int) error {
	docID := strconv.Itoa(id)
	docRef := r.client.Collection(r.casesCollection()).Doc(docID)

	// Existence check first so Delete reports not-found like other backends
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "case not found", goerr.V("case_id", id))
		}
		return goerr.Wrap(err, "failed to get case", goerr.V("case_id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete case", goerr.V("case_id", id))
	}
	return nil
}

func (r *caseRepository) GetArchived(ctx context.Context, archiveID string) (*model.Case, error) {
	docSnap, err := r.client.Collection(r.archiveCollection()).Doc(archiveID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "archived case not found", goerr.V("archive_id", archiveID))
		}
		return nil, goerr.Wrap(err, "failed to get archived case", goerr.V("archive_id", archiveID))
	}

	var c model.Case
	if err := docSnap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode archived case", goerr.V("archive_id", archiveID))
	}

	return &c, nil
}
