// Package httpsd is a minimal HTTPS static file server for low-traffic
// personal sites.
//
// Each accepted connection gets its own goroutine which performs the TLS
// handshake, reads one request, resolves it to a file under the website
// root, writes a status line, Server and Content-Type header and the file
// body, sends close-notify and closes. Nothing is shared between
// connections except the read-only Config.
//
// Highlights
//   - GET and HEAD only; anything else gets 405.
//   - Directory escapes are rejected twice: a pattern blacklist over every
//     percent-decoding layer, then a canonical root-prefix check that also
//     resolves symlinks.
//   - Error pages are looked up under the website root, then under a
//     system-wide directory, then a built-in page is served.
//   - Response headers are bounded to 1 KiB.
//   - Per-connection handshake, read and write deadlines.
//
// Quick start:
//
//	cert, _ := tls.LoadX509KeyPair("cert", "key")
//	s, err := httpsd.NewServer(httpsd.Config{
//	    Addr:      ":8443",
//	    Root:      "/home/me/.local/share/cyllenian/website",
//	    TLSConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
//	})
//	if err != nil { log.Fatal(err) }
//	log.Fatal(s.ListenAndServe())
package httpsd
