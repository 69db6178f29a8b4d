/*
 * Copyright (C) 2025 Payops Labs.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package ingest

import (
	"bufio"
	"context"
	"os"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var flog = logrus.WithField("component", "ingest.File")

const defaultFileChunk = 100

type ingestFile struct {
	params api.IngestFile
	clk    clock.Clock
	json   jsoniter.API
}

// NewIngestFile creates an ingester replaying JSON transactions, one per
// line, from a file.
func NewIngestFile(params api.IngestFile, clk clock.Clock) (Ingester, error) {
	if params.Filename == "" {
		return nil, errors.New("ingest filename not specified")
	}
	if params.Chunks <= 0 {
		params.Chunks = defaultFileChunk
	}
	flog.Infof("input file name = %s, loop = %v", params.Filename, params.Loop)
	return &ingestFile{params: params, clk: clk, json: jsoniter.ConfigCompatibleWithStandardLibrary}, nil
}

// Ingest reads the file once, or over and over in loop mode. Replayed
// transactions without a timestamp are stamped at ingest time, so loops do
// not replay data the window would immediately evict.
func (r *ingestFile) Ingest(ctx context.Context, sub Submitter) error {
	for {
		if err := r.replay(ctx, sub); err != nil {
			return err
		}
		if !r.params.Loop {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

func (r *ingestFile) replay(ctx context.Context, sub Submitter) error {
	file, err := os.Open(r.params.Filename)
	if err != nil {
		return errors.Wrap(err, "opening transaction file")
	}
	defer func() {
		_ = file.Close()
	}()

	batch := make([]models.Transaction, 0, r.params.Chunks)
	lines, decodeFailed := 0, 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		lines++
		var txn models.Transaction
		if err := r.json.Unmarshal(scanner.Bytes(), &txn); err != nil {
			decodeFailed++
			decodeErrors.WithLabelValues("file").Inc()
			continue
		}
		if txn.Timestamp.IsZero() {
			txn.Timestamp = r.clk.Now()
		}
		batch = append(batch, txn)
		if len(batch) >= r.params.Chunks {
			r.flush(sub, batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		r.flush(sub, batch)
	}
	flog.Infof("replayed %d lines from %s (%d undecodable)", lines, r.params.Filename, decodeFailed)
	return errors.Wrap(scanner.Err(), "reading transaction file")
}

func (r *ingestFile) flush(sub Submitter, batch []models.Transaction) {
	accepted, errs := sub.Submit(batch)
	ingestedTotal.WithLabelValues("file").Add(float64(accepted))
	if len(errs) > 0 {
		flog.Debugf("%d of %d transactions rejected", len(errs), len(batch))
	}
}
