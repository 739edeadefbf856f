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


package profile

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
)

// collectionsSer serializes a user's collection list with MUS encoding.
var collectionsSer = ord.NewSliceSer[string](ord.String)

// MarshalCollections serializes a collection list to bytes.
func MarshalCollections(collections []string) []byte {
	buf := make([]byte, collectionsSer.Size(collections))
	collectionsSer.Marshal(collections, buf)
	return buf
}

// UnmarshalCollections deserializes a collection list from bytes.
func UnmarshalCollections(data []byte) ([]string, error) {
	collections, _, err := collectionsSer.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return collections, nil
}
