//
// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/golang/glog"
)

const (
	commentMarker = "|"
	unknownValue  = "?"
)

// Clean copies the records of r to w, dropping every record with an unknown
// value. Comments and blank lines are dropped too. It returns the number of
// records kept and dropped.
func Clean(r io.Reader, w io.Writer) (kept, dropped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, commentMarker); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if hasUnknown(line) {
			dropped++
			continue
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return kept, dropped, err
		}
		kept++
	}
	return kept, dropped, sc.Err()
}

func hasUnknown(line string) bool {
	for _, f := range strings.Split(strings.TrimSuffix(line, terminator), delimiter) {
		if strings.TrimSpace(f) == unknownValue {
			return true
		}
	}
	return false
}

// CleanFile rewrites the raw data file src to dst without the records with
// unknown values.
func CleanFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("couldn't open the data file = %q, err = %w", src, err)
	}
	defer in.Close()
	var kept, dropped int
	if err := writeFile(dst, func(w io.Writer) error {
		kept, dropped, err = Clean(in, w)
		return err
	}); err != nil {
		return err
	}
	log.Infof("Kept %d records of %q, dropped %d with unknown values", kept, src, dropped)
	return nil
}
