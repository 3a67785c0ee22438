package modelcache

import "database/sql"

// DB exposes the underlying connection to tests.
func DB(c *Cache) *sql.DB { return c.db }
