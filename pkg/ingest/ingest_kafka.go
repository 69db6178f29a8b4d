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
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var klog = logrus.WithField("component", "ingest.Kafka")

const defaultKafkaBatch = 100

// kafkaReader is the part of kafka.Reader this ingester uses; tests swap in
// a fake.
type kafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ingestKafka struct {
	params api.IngestKafka
	reader kafkaReader
	json   jsoniter.API
}

// NewIngestKafka creates an ingester consuming JSON transactions from a
// Kafka topic. Offsets are committed only after the batch was submitted.
func NewIngestKafka(params api.IngestKafka) (Ingester, error) {
	if len(params.Brokers) == 0 || params.Topic == "" {
		return nil, errors.New("kafka brokers and topic must be specified")
	}
	if params.BatchMaxLen <= 0 {
		params.BatchMaxLen = defaultKafkaBatch
	}
	startOffset := kafka.FirstOffset
	if params.StartOffset == "LastOffset" {
		startOffset = kafka.LastOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     params.Brokers,
		Topic:       params.Topic,
		GroupID:     params.GroupID,
		StartOffset: startOffset,
	})
	klog.Infof("reading topic %s from brokers %v, group %q", params.Topic, params.Brokers, params.GroupID)
	return &ingestKafka{
		params: params,
		reader: reader,
		json:   jsoniter.ConfigCompatibleWithStandardLibrary,
	}, nil
}

// Ingest consumes until the context is canceled. Messages are decoded and
// submitted one fetch batch at a time.
func (r *ingestKafka) Ingest(ctx context.Context, sub Submitter) error {
	defer func() {
		_ = r.reader.Close()
	}()

	batch := make([]models.Transaction, 0, r.params.BatchMaxLen)
	pending := make([]kafka.Message, 0, r.params.BatchMaxLen)
	for {
		m, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "fetching from kafka")
		}
		pending = append(pending, m)
		var txn models.Transaction
		if err := r.json.Unmarshal(m.Value, &txn); err != nil {
			decodeErrors.WithLabelValues("kafka").Inc()
		} else {
			batch = append(batch, txn)
		}
		if len(pending) < r.params.BatchMaxLen && r.moreBuffered() {
			continue
		}
		if len(batch) > 0 {
			accepted, _ := sub.Submit(batch)
			ingestedTotal.WithLabelValues("kafka").Add(float64(accepted))
			batch = batch[:0]
		}
		if err := r.reader.CommitMessages(ctx, pending...); err != nil {
			return errors.Wrap(err, "committing kafka offsets")
		}
		pending = pending[:0]
	}
}

// moreBuffered reports whether the reader is known to have messages ready.
// The concrete kafka.Reader exposes buffered lag only via stats, so this is
// a conservative "no": each fetched message is submitted and committed
// promptly rather than waiting to fill a batch.
func (r *ingestKafka) moreBuffered() bool {
	type lagged interface{ Lag() int64 }
	if lr, ok := r.reader.(lagged); ok {
		return lr.Lag() > 0
	}
	return false
}
