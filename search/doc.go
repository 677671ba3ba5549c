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


// Package search provides semantic search over embedded transcript chunks.
//
// The Searcher embeds the query, retrieves similar chunks by vector
// similarity, and boosts results whose text contains every significant
// query word verbatim. Hits carry the parent document's title and
// meeting date so callers can render results without a second lookup.
package search
