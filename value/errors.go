// Copyright 2026 The Forge Authors.
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

package value

// ErrorKind enumerates the cell-level error taxonomy of §3/§7. These flow
// as ordinary Values (KindError), never as Go errors — only model-level
// failures (cycles, bad overrides, dialect violations) use Go errors, via
// gopkg.in/src-d/go-errors.v1 in the forge/resolve/modeleval packages.
type ErrorKind string

const (
	DivZero ErrorKind = "DIV/0"
	Value_  ErrorKind = "VALUE"
	Num     ErrorKind = "NUM"
	Name    ErrorKind = "NAME"
	Ref     ErrorKind = "REF"
	NA      ErrorKind = "N/A"
	Null    ErrorKind = "NULL"
)

// IsNA reports whether this ErrorKind is NA, the only kind ISNA/IFNA
// catch; every kind is IFERROR-catchable per §4.2.
func (k ErrorKind) IsNA() bool { return k == NA }
