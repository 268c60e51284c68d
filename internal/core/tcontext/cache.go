package tcontext

import "sync"

// SessionBase is the fixed root of every session's context: system and
// agent identity, plus project/category overlays layered on top of it.
type SessionBase struct {
	System   map[string]any // os, platform, version
	Agent    map[string]any // name, class, version, prefix
	Project  map[string]any
	Category map[string]any
	Client   map[string]any // system/user/repo, merged in by the probe task (J)
}

// vars flattens a SessionBase into the variable map used as the session
// layer of the render context chain. The "@" entry resolves to the
// literal string "@".
func (b SessionBase) vars() map[string]any {
	return map[string]any{
		"system":   b.System,
		"agent":    b.Agent,
		"project":  b.Project,
		"category": b.Category,
		"client":   b.Client,
		"@":        "@",
	}
}

// Cache retains one built session-base scope per active session, dropped
// wholesale when the session changes project or the project configuration
// changes. The resolved-flag view is not held here: flags.Store caches and
// invalidates it on its own, so dropping it never disturbs the cached
// base.
type Cache struct {
	mu    sync.Mutex
	bases map[string]SessionBase
}

// New constructs an empty context cache.
func New() *Cache {
	return &Cache{bases: make(map[string]SessionBase)}
}

// Put retains base for sessionID, replacing whatever was previously
// cached.
func (c *Cache) Put(sessionID string, base SessionBase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bases[sessionID] = base
}

// Get returns the cached base for sessionID, if any.
func (c *Cache) Get(sessionID string) (SessionBase, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bases[sessionID]
	return b, ok
}

// InvalidateSession drops the cached base for a single session — called
// when that session changes project.
func (c *Cache) InvalidateSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bases, sessionID)
}

// InvalidateAll drops every cached session base — called when project
// configuration changes in a way that could affect every active session.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bases = make(map[string]SessionBase)
}

// BaseScope builds the session-layer Scope for sessionID, or false if
// nothing is cached for it yet.
func (c *Cache) BaseScope(sessionID string) (*Scope, bool) {
	base, ok := c.Get(sessionID)
	if !ok {
		return nil, false
	}
	return Root(base.vars()), true
}

// Vars flattens sessionID's cached base into the plain variable map
// render.Render expects as its sessionVars layer; an uncached session
// yields an empty map rather than an error, since the session-base layer
// is always optional.
func (c *Cache) Vars(sessionID string) map[string]any {
	base, ok := c.Get(sessionID)
	if !ok {
		return map[string]any{}
	}
	return base.vars()
}

// mergeClient applies fn to a copy of sessionID's cached Client namespace
// and stores the result back, creating an empty base if none existed yet.
// Used by the client-context probe task (J) to fold merged JSON payloads
// into client.system / client.user / client.repo without the task needing
// to know how the base is otherwise assembled.
func (c *Cache) mergeClient(sessionID string, merge func(client map[string]any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	base := c.bases[sessionID]
	if base.Client == nil {
		base.Client = make(map[string]any)
	}
	merge(base.Client)
	c.bases[sessionID] = base
}

// MergeClientSystem merges data into client.system for sessionID.
func (c *Cache) MergeClientSystem(sessionID string, data map[string]any) {
	c.mergeClient(sessionID, func(client map[string]any) { client["system"] = data })
}

// MergeClientUser merges data into client.user for sessionID.
func (c *Cache) MergeClientUser(sessionID string, data map[string]any) {
	c.mergeClient(sessionID, func(client map[string]any) { client["user"] = data })
}

// MergeClientRepo merges data into client.repo for sessionID.
func (c *Cache) MergeClientRepo(sessionID string, data map[string]any) {
	c.mergeClient(sessionID, func(client map[string]any) { client["repo"] = data })
}

// SessionMerger adapts a Cache to the probe task's Merger interface for one
// fixed session, so the probe task (which is itself one-per-session) never
// has to carry a session id around just to merge client data.
type SessionMerger struct {
	Cache     *Cache
	SessionID string
}

func (m SessionMerger) MergeClientSystem(data map[string]any) { m.Cache.MergeClientSystem(m.SessionID, data) }
func (m SessionMerger) MergeClientUser(data map[string]any)   { m.Cache.MergeClientUser(m.SessionID, data) }
func (m SessionMerger) MergeClientRepo(data map[string]any)   { m.Cache.MergeClientRepo(m.SessionID, data) }
