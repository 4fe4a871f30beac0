package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/patientcare/internal/metrics"
	"stealthcompany.com/patientcare/internal/patient"
)

// Document keys in the bucket's default collection. The whole patient
// collection lives in one KV document so load-all/save-all stays a single
// round trip; the lock document guards bulk writers such as the seeder.
const (
	collectionDocID = "patients/all"
	lockDocID       = "patients/lock"
)

// CouchbaseStore persists the collection in a Couchbase bucket.
type CouchbaseStore struct {
	cluster *gocb.Cluster
	bucket  *gocb.Bucket
}

// NewCouchbaseStore connects to the cluster and waits for the bucket's KV
// service to come up.
func NewCouchbaseStore(url, username, password, bucketName string) (*CouchbaseStore, error) {
	log.Info().
		Str("url", url).
		Str("bucket", bucketName).
		Msg("Creating Couchbase connection")

	cluster, err := gocb.Connect(url, gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{Username: username, Password: password},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to Couchbase cluster")
		return nil, fmt.Errorf("connect cluster: %w", err)
	}

	bucket := cluster.Bucket(bucketName)
	err = bucket.WaitUntilReady(30*time.Second, &gocb.WaitUntilReadyOptions{
		ServiceTypes: []gocb.ServiceType{gocb.ServiceTypeKeyValue},
	})
	if err != nil {
		log.Error().Err(err).Msg("Couchbase bucket not ready")
		return nil, fmt.Errorf("bucket not ready: %w", err)
	}

	log.Info().Msg("Couchbase connection created successfully")
	return &CouchbaseStore{cluster: cluster, bucket: bucket}, nil
}

// Close closes the cluster connection.
func (cs *CouchbaseStore) Close() error {
	if cs.cluster != nil {
		return cs.cluster.Close(nil)
	}
	return nil
}

// LoadAll fetches the collection document. A missing document is an empty
// collection.
func (cs *CouchbaseStore) LoadAll(ctx context.Context) (map[string]patient.Attributes, error) {
	start := time.Now()
	col := cs.bucket.DefaultCollection()

	res, err := col.Get(collectionDocID, &gocb.GetOptions{Context: ctx})
	if err != nil {
		if errors.Is(err, gocb.ErrDocumentNotFound) {
			metrics.RecordStoreOperation("couchbase", "load", start, nil, 0)
			return map[string]patient.Attributes{}, nil
		}
		log.Error().Err(err).Str("doc_id", collectionDocID).Msg("Failed to get collection document")
		metrics.RecordStoreOperation("couchbase", "load", start, err, 0)
		return nil, &Error{Op: "load", Err: err}
	}

	var records map[string]patient.Attributes
	if err := res.Content(&records); err != nil {
		log.Error().Err(err).Str("doc_id", collectionDocID).Msg("Failed to decode collection document")
		metrics.RecordStoreOperation("couchbase", "load", start, err, 0)
		return nil, &Error{Op: "load", Err: err}
	}
	if records == nil {
		records = map[string]patient.Attributes{}
	}

	log.Debug().
		Str("doc_id", collectionDocID).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Loaded patient collection from Couchbase")
	metrics.RecordStoreOperation("couchbase", "load", start, nil, len(records))
	return records, nil
}

// SaveAll upserts the full collection document.
func (cs *CouchbaseStore) SaveAll(ctx context.Context, records map[string]patient.Attributes) error {
	start := time.Now()
	col := cs.bucket.DefaultCollection()

	_, err := col.Upsert(collectionDocID, records, &gocb.UpsertOptions{Context: ctx})
	if err != nil {
		log.Error().Err(err).Str("doc_id", collectionDocID).Msg("Failed to upsert collection document")
		metrics.RecordStoreOperation("couchbase", "save", start, err, 0)
		return &Error{Op: "save", Err: err}
	}

	log.Debug().
		Str("doc_id", collectionDocID).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Saved patient collection to Couchbase")
	metrics.RecordStoreOperation("couchbase", "save", start, nil, len(records))
	return nil
}

// Lock writes the lock document so bulk writers do not trample a serving
// API instance. The lock expires after an hour in case the holder dies.
func (cs *CouchbaseStore) Lock(ctx context.Context, holder string) error {
	col := cs.bucket.DefaultCollection()

	lockDoc := map[string]interface{}{
		"locked":    true,
		"lockedAt":  time.Now().UTC(),
		"lockedBy":  holder,
		"expiresAt": time.Now().UTC().Add(1 * time.Hour),
	}
	if _, err := col.Upsert(lockDocID, lockDoc, &gocb.UpsertOptions{Context: ctx}); err != nil {
		return fmt.Errorf("failed to create lock document: %w", err)
	}

	log.Info().Str("holder", holder).Msg("Store locked")
	return nil
}

// Unlock removes the lock document.
func (cs *CouchbaseStore) Unlock(ctx context.Context) error {
	col := cs.bucket.DefaultCollection()

	if _, err := col.Remove(lockDocID, &gocb.RemoveOptions{Context: ctx}); err != nil {
		return fmt.Errorf("failed to remove lock document: %w", err)
	}

	log.Info().Msg("Store unlocked")
	return nil
}
