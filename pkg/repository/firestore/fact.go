package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fuelrats/ratboard/pkg/domain/model"
)

type factRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFactRepository(client *firestore.Client) *factRepository {
	return &factRepository{client: client}
}

func (r *factRepository) factsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_facts"
	}
	return "facts"
}

func (r *factRepository) Put(ctx context.Context, fact *model.Fact) error {
	if _, err := r.client.Collection(r.factsCollection()).Doc(fact.Key()).Set(ctx, fact); err != nil {
		return goerr.Wrap(err, "failed to put fact", goerr.V("key", fact.Key()))
	}
	return nil
}

func (r *factRepository) Get(ctx context.Context, name, lang string) (*model.Fact, error) {
	key := name + "-" + lang
	docSnap, err := r.client.Collection(r.factsCollection()).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "fact not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get fact", goerr.V("key", key))
	}

	var f model.Fact
	if err := docSnap.DataTo(&f); err != nil {
		return nil, goerr.Wrap(err, "failed to decode fact", goerr.V("key", key))
	}

	return &f, nil
}

func (r *factRepository) Delete(ctx context.Context, name, lang string) error {
	key := name + "-" + lang
	docRef := r.client.Collection(r.factsCollection()).Doc(key)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "fact not found", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to get fact", goerr.V("key", key))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete fact", goerr.V("key", key))
	}
	return nil
}

func (r *factRepository) List(ctx context.Context) ([]*model.Fact, error) {
	iter := r.client.Collection(r.factsCollection()).Documents(ctx)
	defer iter.Stop()

	var facts []*model.Fact
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate facts")
		}

		var f model.Fact
		if err := docSnap.DataTo(&f); err != nil {
			return nil, goerr.Wrap(err, "failed to decode fact", goerr.V("doc_id", docSnap.Ref.ID))
		}

		facts = append(facts, &f)
	}

	sort.Slice(facts, func(i, j int) bool {
		return facts[i].Key() < facts[j].Key()
	})

	return facts, nil
}
