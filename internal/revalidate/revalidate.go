// Package revalidate marks public pages stale after content-affecting writes.
package revalidate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"beaconcms.org/internal/obs"
)

// GlobalPage is the content page whose sections render on every public page.
const GlobalPage = "global"

// SharedPages are re-rendered when global content or site settings change.
var SharedPages = []string{"/", "/about", "/features", "/pricing", "/contact", "/faq", "/careers", "/blog"}

// Invalidator marks rendered paths stale.
type Invalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

// Nop discards invalidations.
type Nop struct{}

func (Nop) Invalidate(context.Context, ...string) error { return nil }

type named struct {
	name string
	Invalidator
}

// Notifier fans paths out to every target. Failures are logged and counted, never returned.
type Notifier struct {
	targets []named
}

// NewNotifier returns a notifier with no targets.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Add registers a target under name, which labels its failure metric.
func (n *Notifier) Add(name string, inv Invalidator) *Notifier {
	if inv != nil {
		n.targets = append(n.targets, named{name: name, Invalidator: inv})
	}
	return n
}

// Targets lists the registered target names.
func (n *Notifier) Targets() []string {
	out := make([]string, 0, len(n.targets))
	for _, t := range n.targets {
		out = append(out, t.name)
	}
	return out
}

// Notify invalidates paths on every target.
func (n *Notifier) Notify(ctx context.Context, paths ...string) {
	if n == nil || len(n.targets) == 0 {
		return
	}
	paths = Dedupe(paths)
	if len(paths) == 0 {
		return
	}
	for _, t := range n.targets {
		if err := t.Invalidate(ctx, paths...); err != nil {
			obs.RevalidationFailed(t.name)
			obs.Logger().Warn("revalidation failed",
				zap.String("target", t.name),
				zap.Strings("paths", paths),
				zap.Error(err))
		}
	}
}

// Dedupe drops empty and repeated paths and sorts the rest.
func Dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// BlogPaths are the pages showing the post with slug.
func BlogPaths(slugs ...string) []string {
	paths := []string{"/", "/blog"}
	for _, s := range slugs {
		if s != "" {
			paths = append(paths, "/blog/"+s)
		}
	}
	return paths
}

// JobPaths are the pages showing the job with slug.
func JobPaths(slugs ...string) []string {
	paths := []string{"/careers"}
	for _, s := range slugs {
		if s != "" {
			paths = append(paths, "/careers/"+s)
		}
	}
	return paths
}

// SettingsPaths are invalidated on any settings change.
func SettingsPaths() []string {
	return append([]string(nil), SharedPages...)
}

// ContentPaths maps a content page key to the paths rendering it.
func ContentPaths(page string) []string {
	switch page {
	case GlobalPage:
		return append([]string(nil), SharedPages...)
	case "home", "":
		return []string{"/"}
	default:
		return []string{"/" + strings.TrimPrefix(page, "/")}
	}
}

var errNoPaths = errors.New("revalidate: no paths")

func checkPaths(paths []string) error {
	if len(paths) == 0 {
		return errNoPaths
	}
	for _, p := range paths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("revalidate: path %q must start with /", p)
		}
	}
	return nil
}
