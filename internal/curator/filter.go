package curator

import (
	"fmt"
	"strings"
)

var filterEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote renders s as a double quoted PocketBase filter literal.
func quote(s string) string {
	return `"` + filterEscaper.Replace(s) + `"`
}

func statusFilter(status Status) string {
	return "status=" + quote(string(status))
}

func notebookFilter(notebookID string) string {
	return fmt.Sprintf("notebook=%s && %s", quote(notebookID), statusFilter(StatusActive))
}

func tagFilter(tagID string) string {
	return fmt.Sprintf("tags~%s && %s", quote(tagID), statusFilter(StatusActive))
}

func nameFilter(name string) string {
	return "name=" + quote(name)
}

func idFilter(id string) string {
	return "id=" + quote(id)
}
