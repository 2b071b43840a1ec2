// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package paths_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/gopher2600netplay/paths"
)

func TestResourcePathJoinsSuppliedComponents(t *testing.T) {
	pth := paths.ResourcePath("replays", "session.rep")
	if !strings.HasSuffix(pth, "replays/session.rep") {
		t.Errorf("unexpected resource path: %s", pth)
	}
}

func TestUniqueFilenameIncludesProgramName(t *testing.T) {
	fn := paths.UniqueFilename("replay", "combat")
	if !strings.HasPrefix(fn, "replay_combat_") {
		t.Errorf("unexpected filename: %s", fn)
	}
}

func TestUniqueFilenameWithoutProgramName(t *testing.T) {
	fn := paths.UniqueFilename("replay", "")
	if !strings.HasPrefix(fn, "replay_") || strings.Contains(fn, "replay__") {
		t.Errorf("unexpected filename: %s", fn)
	}
}
