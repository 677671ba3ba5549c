// Copyright 2026 Scribelight
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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidSegment indicates a Segment failed validation.
	ErrInvalidSegment = errors.New("invalid segment")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidItem indicates a structured Item failed validation.
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidStage indicates an unknown pipeline stage value.
	ErrInvalidStage = errors.New("invalid stage")

	// ErrEmptyContent indicates required text content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptySourceID indicates the source identifier is empty.
	ErrEmptySourceID = errors.New("source id cannot be empty")

	// ErrNoSegments indicates segmentation produced no segments.
	ErrNoSegments = errors.New("no segments produced")

	// ErrSegmentPartition indicates segment index ranges do not partition
	// the transcript's line-index space and cannot be repaired.
	ErrSegmentPartition = errors.New("segments do not partition transcript lines")
)
