// Package users implements the account lifecycle and provisioning engine
// for multi tenant applications: registration (single and bulk), credential
// issuance and rotation, profile mutation, and session bound identity
// resolution. Persistence, mail transport, and media handling stay behind
// narrow collaborator interfaces so products can swap them out.
//
// Registration:
//   - RegisterAccountHandler validates the creation contract, normalizes the
//     mail address, hashes the credential, persists the account, and binds the
//     caller's session before responding. Confirmation mail and default group
//     attachment run as detached tasks whose failures are logged, never
//     surfaced, and never roll back the committed account.
//   - BulkProvisionHandler accepts minimal descriptors, generates a credential
//     per item, and processes items through a bounded worker pool with
//     per-item failure isolation. The caller gets an immediate acknowledgment;
//     item outcomes are observable through WithResultObserver.
//
// Sessions:
//   - SessionStore owns the binding from an opaque session handle to an
//     account id. Resolution of a cleared binding fails with
//     ErrNoSessionBinding; bindings are established on registration and
//     cleared on account deletion.
//
// All collaborators (RepositoryManager, Notifier, SessionStore) are passed
// explicitly to constructors; there is no ambient registry.
package users
