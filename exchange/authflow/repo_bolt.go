package authflow

import (
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/go-dashboard-session/internal/errors"
	"go.etcd.io/bbolt"
)

var bucketName = []byte("authflow")

// BoltRepo keeps handshake state in a BBolt file so that it survives restarts
// between the redirect to the identity provider and the callback.
type BoltRepo struct {
	db *bbolt.DB
}

var _ Repo = (*BoltRepo)(nil)

func NewBoltRepo(db *bbolt.DB) (*BoltRepo, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("[authflow NewBoltRepo] creating bucket: %w", err)
	}
	return &BoltRepo{db: db}, nil
}

// NewBoltRepoFromFile opens a BBolt database at path.
func NewBoltRepoFromFile(path string, options *bbolt.Options) (*BoltRepo, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("[authflow NewBoltRepoFromFile] opening bbolt db: %w", err)
	}
	repo, err := NewBoltRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *BoltRepo) Close() error {
	return r.db.Close()
}

func (r *BoltRepo) Upsert(state string, flow *State) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if flow == nil {
		return errors.New("flow cannot be nil")
	}
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("[authflow BoltRepo Upsert] marshal: %w", err)
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(state), data)
	})
}

func (r *BoltRepo) Get(state string) (*State, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}
	var flow State
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketName).Get([]byte(state))
		if data == nil {
			return apperrors.Wrapf(apperrors.ErrNotFound, "[authflow BoltRepo] state")
		}
		return json.Unmarshal(data, &flow)
	})
	if err != nil {
		return nil, err
	}
	return &flow, nil
}

func (r *BoltRepo) Delete(state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(state))
	})
}

func (r *BoltRepo) Take(state string) (*State, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}
	var flow State
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		data := b.Get([]byte(state))
		if data == nil {
			return apperrors.Wrapf(apperrors.ErrNotFound, "[authflow BoltRepo] state")
		}
		if err := json.Unmarshal(data, &flow); err != nil {
			return err
		}
		return b.Delete([]byte(state))
	})
	if err != nil {
		return nil, err
	}
	return &flow, nil
}
