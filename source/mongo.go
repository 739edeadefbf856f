// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/poiesic/recall/core"
)

// Mongo fetches documents from a MongoDB collection. Each record becomes
// one document, rendered as relaxed extended JSON. An optional filter,
// itself extended JSON, narrows the records.
type Mongo struct {
	uri        string
	database   string
	collection string
	filter     string
}

var _ Source = (*Mongo)(nil)

// NewMongo creates a MongoDB source. filter may be empty, which matches
// every record in the collection.
func NewMongo(uri, database, collection, filter string) *Mongo {
	return &Mongo{
		uri:        uri,
		database:   database,
		collection: collection,
		filter:     filter,
	}
}

// Name identifies the database and collection, never the URI, which may
// carry credentials.
func (m *Mongo) Name() string {
	return fmt.Sprintf("mongodb %s.%s", m.database, m.collection)
}

// Load connects, runs the filtered find, and renders each record as one
// document.
func (m *Mongo) Load(ctx context.Context) ([]core.Document, error) {
	filter, err := parseFilter(m.filter)
	if err != nil {
		return nil, fmt.Errorf("%w: filter: %v", core.ErrUnsupportedFormat, err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %v", core.ErrSourceUnavailable, m.Name(), err)
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	cursor, err := client.Database(m.database).Collection(m.collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %v", core.ErrSourceUnavailable, m.Name(), err)
	}
	defer cursor.Close(ctx)

	var docs []core.Document
	for cursor.Next(ctx) {
		var record bson.M
		if err := cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("%w: decoding record from %s: %v", core.ErrSourceUnavailable, m.Name(), err)
		}

		doc, ok, err := m.renderRecord(record, len(docs))
		if err != nil {
			return nil, fmt.Errorf("%w: rendering record from %s: %v", core.ErrSourceUnavailable, m.Name(), err)
		}
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating %s: %v", core.ErrSourceUnavailable, m.Name(), err)
	}
	return docs, nil
}

// renderRecord turns one decoded record into a document carrying the
// source collection as provenance. ok is false for records that render
// to nothing.
func (m *Mongo) renderRecord(record bson.M, index int) (doc core.Document, ok bool, err error) {
	rendered, err := bson.MarshalExtJSON(record, false, false)
	if err != nil {
		return core.Document{}, false, err
	}

	text := strings.TrimSpace(string(rendered))
	if text == "" {
		return core.Document{}, false, nil
	}
	return core.Document{
		Content: text,
		Metadata: map[string]string{
			core.MetaSource:     m.Name(),
			core.MetaCollection: m.collection,
			core.MetaIndex:      strconv.Itoa(index),
		},
	}, true, nil
}

// parseFilter decodes an extended JSON filter. Empty input matches all.
func parseFilter(filter string) (bson.D, error) {
	if strings.TrimSpace(filter) == "" {
		return bson.D{}, nil
	}
	var parsed bson.D
	if err := bson.UnmarshalExtJSON([]byte(filter), true, &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}
