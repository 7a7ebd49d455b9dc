package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"formassist/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrEvidenceNotFound is returned when a file id has no stored file
var ErrEvidenceNotFound = errors.New("evidence not found")

// EvidenceRepo stores uploaded evidence files in GridFS
type EvidenceRepo interface {
	Upload(ctx context.Context, sessionID, questionID, fileName, mimeType string, src io.Reader) (*model.EvidenceRef, error)
	Read(ctx context.Context, fileID string) (*model.EvidenceRef, []byte, error)
	Delete(ctx context.Context, fileID string) error
}

type evidenceRepo struct {
	db *mongo.Database
}

// NewEvidenceRepo creates a new evidence repository
func NewEvidenceRepo(db *mongo.Database) EvidenceRepo {
	return &evidenceRepo{db: db}
}

type evidenceFile struct {
	ID       primitive.ObjectID `bson:"_id"`
	Length   int64              `bson:"length"`
	Filename string             `bson:"filename"`
	Metadata struct {
		ContentType string `bson:"contentType"`
		SessionID   string `bson:"sessionId"`
		QuestionID  string `bson:"questionId"`
	} `bson:"metadata"`
}

// bucket is created per call; deadlines are per-bucket state in GridFS
func (r *evidenceRepo) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(r.db, options.GridFSBucket().SetName("evidence"))
	if err != nil {
		return nil, err
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(dl); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(dl); err != nil {
			return nil, err
		}
	}
	return b, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (r *evidenceRepo) Upload(ctx context.Context, sessionID, questionID, fileName, mimeType string, src io.Reader) (*model.EvidenceRef, error) {
	b, err := r.bucket(ctx)
	if err != nil {
		return nil, err
	}

	meta := bson.M{"contentType": mimeType, "sessionId": sessionID, "questionId": questionID}
	counter := &countingReader{r: src}
	oid, err := b.UploadFromStream(fileName, counter, options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		return nil, fmt.Errorf("upload evidence: %w", err)
	}

	return &model.EvidenceRef{
		FileID:   oid.Hex(),
		FileName: fileName,
		MIMEType: mimeType,
		Size:     counter.n,
	}, nil
}

func (r *evidenceRepo) Read(ctx context.Context, fileID string) (*model.EvidenceRef, []byte, error) {
	oid, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, ErrEvidenceNotFound
	}
	b, err := r.bucket(ctx)
	if err != nil {
		return nil, nil, err
	}

	cursor, err := b.FindContext(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, nil, err
	}
	defer cursor.Close(ctx)
	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrEvidenceNotFound
	}
	var file evidenceFile
	if err := cursor.Decode(&file); err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if _, err := b.DownloadToStream(oid, &buf); err != nil {
		return nil, nil, fmt.Errorf("download evidence: %w", err)
	}

	return &model.EvidenceRef{
		FileID:   fileID,
		FileName: file.Filename,
		MIMEType: file.Metadata.ContentType,
		Size:     file.Length,
	}, buf.Bytes(), nil
}

func (r *evidenceRepo) Delete(ctx context.Context, fileID string) error {
	oid, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return ErrEvidenceNotFound
	}
	b, err := r.bucket(ctx)
	if err != nil {
		return err
	}
	err = b.DeleteContext(ctx, oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return ErrEvidenceNotFound
	}
	return err
}
