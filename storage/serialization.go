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

package storage

import (
	"github.com/poiesic/tickerdex/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalSecurity serializes a Security to bytes.
func MarshalSecurity(security *core.Security) []byte {
	buf := make([]byte, core.SecurityMUS.Size(*security))
	core.SecurityMUS.Marshal(*security, buf)
	return buf
}

// UnmarshalSecurity deserializes a Security from bytes.
func UnmarshalSecurity(data []byte) (*core.Security, error) {
	security, _, err := core.SecurityMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &security, nil
}

// MarshalReference serializes a ReferenceEntry to bytes.
func MarshalReference(entry *core.ReferenceEntry) []byte {
	buf := make([]byte, core.ReferenceEntryMUS.Size(*entry))
	core.ReferenceEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalReference deserializes a ReferenceEntry from bytes.
func UnmarshalReference(data []byte) (*core.ReferenceEntry, error) {
	entry, _, err := core.ReferenceEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}
