// Command bookcache serves book lookups from a catalog
// through an LRU cache that is periodically reaped by frequency.
//
// Book ids are read from standard input, one per line; -1 exits.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/djdv/go-lrureap"
	"github.com/djdv/go-lrureap/internal/library"
	"github.com/redis/go-redis/v9"
)

const exitID = -1

type settings struct {
	booksPath    string
	redisAddr    string
	capacity     int
	refresh      time.Duration
	sweepTimeout time.Duration
}

func main() {
	var cfg settings
	flag.StringVar(&cfg.booksPath, "books", "books.csv", "CSV catalog to load (id,title,author,isbn,year)")
	flag.StringVar(&cfg.redisAddr, "redis", "", "Redis address to use as the catalog instead of memory; -books seeds it")
	flag.IntVar(&cfg.capacity, "capacity", 3, "maximum number of cached books")
	flag.DurationVar(&cfg.refresh, "refresh", 10*time.Second, "period between least-frequently-used sweeps")
	flag.DurationVar(&cfg.sweepTimeout, "sweep-timeout", lrureap.DefaultSweepTimeout, "how long a sweep waits for the cache lock")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg settings, input io.Reader, output io.Writer) error {
	cache, err := lrureap.New[int, library.Book](cfg.capacity,
		lrureap.WithSweepTimeout(cfg.sweepTimeout),
	)
	if err != nil {
		return err
	}
	books, err := readCatalog(cfg.booksPath)
	if err != nil {
		return err
	}
	catalog, closeCatalog, err := openCatalog(ctx, cfg.redisAddr, books, cache)
	if err != nil {
		return err
	}
	defer closeCatalog()
	if err := cache.Start(cfg.refresh); err != nil {
		return err
	}
	defer cache.Stop()
	return serve(ctx, library.New(cache, catalog), input, output)
}

func readCatalog(path string) ([]library.Book, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return library.ReadCSV(file)
}

func openCatalog(
	ctx context.Context, redisAddr string,
	books []library.Book, observer library.Observer,
) (library.Catalog, func() error, error) {
	if redisAddr == "" {
		catalog := library.NewMemory()
		if err := catalog.AddAll(books); err != nil {
			return nil, nil, err
		}
		catalog.AddObserver(observer)
		return catalog, func() error { return nil }, nil
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to %s: %w", redisAddr, err)
	}
	catalog := library.NewRedis(client, library.DefaultRedisPrefix)
	for _, book := range books {
		if err := catalog.Add(ctx, book); err != nil {
			client.Close()
			return nil, nil, err
		}
	}
	catalog.AddObserver(observer)
	return catalog, client.Close, nil
}

func serve(ctx context.Context, lib *library.Library, input io.Reader, output io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, scanErr := scanLines(ctx, input)
	for {
		fmt.Fprintf(output, "Enter book ID to look up (or %d to exit): ", exitID)
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(output)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(output)
			select {
			case err := <-scanErr:
				return err
			default:
				return nil
			}
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(output, "Not a book ID: %q\n", line)
			continue
		}
		if id == exitID {
			return nil
		}
		book, source, err := lib.Find(ctx, id)
		if err != nil {
			return err
		}
		if source != library.FromCache {
			fmt.Fprintln(output, "Book not in cache. Fetching from file...")
		}
		switch source {
		case library.FromCache:
			fmt.Fprintf(output, "Book found in cache: %s\n", book)
		case library.FromCatalog:
			fmt.Fprintf(output, "Book: %s added to cache.\n", book)
		default:
			fmt.Fprintln(output, "Book ID not found in library.")
		}
		printCache(output, lib.Cache())
	}
}

// scanLines reads input in the background so an idle prompt
// can still be interrupted through ctx.
// The line channel is closed when input ends or ctx is done;
// a scan error (or nil) is sent only in the former case.
func scanLines(ctx context.Context, input io.Reader) (<-chan string, <-chan error) {
	var (
		lines = make(chan string)
		errs  = make(chan error, 1)
	)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()
	return lines, errs
}

func printCache(output io.Writer, cache *lrureap.Cache[int, library.Book]) {
	var ids []string
	for id := range cache.Keys() {
		ids = append(ids, strconv.Itoa(id))
	}
	fmt.Fprintf(output, "Cache content (Book IDs): %s\n", strings.Join(ids, " "))
}
