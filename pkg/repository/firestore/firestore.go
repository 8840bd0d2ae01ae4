package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = interfaces.ErrNotFound

// Firestore is the Google Cloud Firestore backed repository
type Firestore struct {
	client   *firestore.Client
	caseRepo *caseRepository
	factRepo *factRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, used to share one
// database between deployments.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.caseRepo.collectionPrefix = prefix
		f.factRepo.collectionPrefix = prefix
	}
}

// New creates a Firestore repository. databaseID may be empty to use the
// project's default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:   client,
		caseRepo: newCaseRepository(client),
		factRepo: newFactRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Case() interfaces.CaseRepository {
	return f.caseRepo
}

func (f *Firestore) Fact() interfaces.FactRepository {
	return f.factRepo
}

// Ping reads one document from the live collection to confirm the backend
// answers.
func (f *Firestore) Ping(ctx context.Context) error {
	iter := f.client.Collection(f.caseRepo.casesCollection()).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.GetAll(); err != nil {
		return goerr.Wrap(err, "firestore ping failed")
	}
	return nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
