package models

import "fmt"

// Tree-structured tables (Category, Region, ProtectedArea) carry a
// materialized path of ancestor ids plus a depth, maintained on insert by
// AfterCreate hooks and on move by the tree service. Descendant queries are
// path-prefix matches, ancestor queries walk the path ids; neither recurses
// through relations at runtime.

const rootPath = "/"

// childPath computes the materialized path for node id under parentPath.
func childPath(parentPath string, id uint64) string {
	if parentPath == "" {
		parentPath = rootPath
	}
	return fmt.Sprintf("%s%d/", parentPath, id)
}
