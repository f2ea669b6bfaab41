// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package termio

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal determines whether standard output is attached to an
// interactive terminal.  The diagnostics renderer uses it to decide
// whether to colour its output when colour is not forced on or off.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Width returns the current width of the controlling terminal, or a
// reasonable fallback (80) when the width cannot be determined (e.g.
// output has been redirected to a file or pipe).
func Width() uint {
	fd := int(os.Stdout.Fd())

	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}

	return uint(w)
}
