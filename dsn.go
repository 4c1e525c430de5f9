package dbfacade

import (
	"fmt"
	"net/url"
	"strings"
)

// mysqlDSN renders u in go-sql-driver/mysql's native DSN grammar
// ("user:pass@tcp(host:port)/db?opt=val"), which is not itself a URL.
func mysqlDSN(u *URL) string {
	var b strings.Builder

	if u.Username != "" {
		b.WriteString(u.Username)
		if u.Password != "" {
			b.WriteString(":")
			b.WriteString(u.Password)
		}
		b.WriteString("@")
	}

	host := u.Hostname
	port := u.Port
	if port == 0 {
		port = 3306
	}
	if host != "" {
		fmt.Fprintf(&b, "tcp(%s:%d)", host, port)
	}

	b.WriteString("/")
	b.WriteString(u.Database)

	if len(u.Options) > 0 {
		q := url.Values{}
		for k, v := range u.Options {
			q.Set(k, v)
		}
		b.WriteString("?")
		b.WriteString(q.Encode())
	}

	return b.String()
}

// sqliteDSN renders u as a mattn/go-sqlite3 DSN: a filesystem path plus
// optional query parameters. "sqlite://memory" (or an empty database) maps
// to SQLite's special ":memory:" database; "sqlite://./rel.db" and
// "sqlite:///abs.db" map to relative/absolute file paths respectively --
// the leading "." or empty authority is where url.Parse put it.
func sqliteDSN(u *URL) string {
	var path string
	switch {
	case u.Hostname == "memory", u.Hostname == "" && u.Database == "":
		path = ":memory:"
	case u.Hostname != "":
		path = u.Hostname + "/" + u.Database
	default:
		path = "/" + u.Database
	}

	if len(u.Options) == 0 {
		return path
	}

	q := url.Values{}
	for k, v := range u.Options {
		q.Set(k, v)
	}
	return path + "?" + q.Encode()
}
