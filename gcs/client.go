/*
 * Copyright (C) 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not
 * use this file except in compliance with the License. You may obtain a copy of
 * the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
 * WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
 * License for the specific language governing permissions and limitations under
 * the License.
 */

package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Client writes, lists and deletes objects in Cloud Storage
type Client struct {
	client *storage.Client
	logger *zap.Logger
}

func NewClient(ctx context.Context, userAgent string, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	opts = append(opts, option.WithUserAgent(userAgent))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Client{client: client, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// WriteObject uploads content to bucket/path, replacing the object if it exists
func (c *Client) WriteObject(ctx context.Context, bucket string, path string, content string) error {
	w := c.NewWriter(ctx, bucket, path, "text/plain")
	if _, err := io.Copy(w, strings.NewReader(content)); err != nil {
		err = fmt.Errorf("copying content to %s: %v", ObjectURI(bucket, path), err)
		if closeErr := w.Close(); closeErr != nil {
			return fmt.Errorf("closing writer: %q, while: %w", closeErr, err)
		}
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing writer for %s: %w", ObjectURI(bucket, path), err)
	}
	c.logger.Info("object written", zap.String("uri", ObjectURI(bucket, path)), zap.Int("bytes", len(content)))
	return nil
}

// NewWriter opens a streaming upload. The object becomes visible only once the writer is closed without error.
func (c *Client) NewWriter(ctx context.Context, bucket string, path string, contentType string) io.WriteCloser {
	w := c.client.Bucket(bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

// ListObjects returns the names of every object under prefix
func (c *Client) ListObjects(ctx context.Context, bucket string, prefix string) ([]string, error) {
	it := c.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", ObjectURI(bucket, prefix), err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

func (c *Client) ObjectsExist(ctx context.Context, bucket string, prefix string) (bool, error) {
	it := c.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	_, err := it.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to list %s: %w", ObjectURI(bucket, prefix), err)
	}
	return true, nil
}

func (c *Client) DeleteObject(ctx context.Context, bucket string, path string) error {
	err := c.client.Bucket(bucket).Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", ObjectURI(bucket, path), err)
	}
	return nil
}

// DeletePrefix removes every object under prefix and returns how many were deleted
func (c *Client) DeletePrefix(ctx context.Context, bucket string, prefix string) (int, error) {
	names, err := c.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return 0, err
	}
	for _, name := range names {
		if err := c.DeleteObject(ctx, bucket, name); err != nil {
			return 0, err
		}
	}
	c.logger.Info("objects deleted", zap.String("prefix", ObjectURI(bucket, prefix)), zap.Int("count", len(names)))
	return len(names), nil
}
