// Package sessionmonitor watches the number of live sessions.
//
// A Monitor is registered as a session.Listener. Every login logs the active
// count; when it exceeds Config.NotifyThreshold a Report of all live sessions
// is handed to a Notifier in the background, at most once per
// Config.NotifyDelay. LogNotifier and EmailNotifier are provided.
//
// The manager takes its listeners at construction, so the source is usually
// a pair of closures over the manager variable:
//
//	var mgr *session.Manager
//	mon := sessionmonitor.New(
//		sessionmonitor.SourceFuncs{
//			CountFunc:    func() int { return mgr.Count() },
//			SessionsFunc: func() []session.Entry { return mgr.Sessions() },
//		},
//		notifier,
//		sessionmonitor.WithConfig(cfg),
//	)
//	mgr, err = session.NewManager(auth, auditLog, hosts, session.WithListener(mon))
//
// Call Wait during shutdown so reports already started are delivered.
package sessionmonitor
