/*
 * Copyright 2024 The probds Authors
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
 */

// Package probds is a library of probabilistic data structures for
// approximate set membership, cardinality, frequency, and quantile
// queries over byte-string keys.
//
// Eight estimators are provided, layered on a shared bit-array and
// double-hashing foundation:
//
//   - BitArray / CountingBitArray[W]: packed bit and counter storage.
//   - Bloom / CountingBloom[W]: approximate set membership.
//   - ScalableBloom: a Bloom filter that grows to hold an unbounded
//     number of keys while honoring a tightening false-positive budget.
//   - Quotient: an open-addressed membership filter whose slots hold a
//     hash remainder plus occupied/continuation/shifted metadata bits.
//   - Cuckoo[F]: bucketed fingerprint filter supporting deletion.
//   - CountMin[C]: approximate frequency counting.
//   - HyperLogLog: approximate cardinality (count-distinct).
//   - TDigest / QDigest: approximate quantiles over a numeric stream.
//
// Every structure here is single-threaded: each instance is owned by
// one caller at a time, and all operations are synchronous and
// non-blocking. Callers that need concurrent access must add their
// own external synchronization (a sync.Mutex, or sharding across
// several instances).
//
// None of these structures persist or serialize their state; that is
// left to the caller. Keys are passed as byte slices and hashed
// internally by each structure.
package probds
