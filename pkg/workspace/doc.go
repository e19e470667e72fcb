// Package workspace implements lifecycle orchestration for SageMaker Studio
// workspaces: user profiles (parents) and the Studio apps they own (children).
//
// # Overview
//
// The control plane is asynchronous and eventually consistent. A delete
// request only initiates teardown; the caller must poll resource status until
// it reaches a terminal state before proceeding. The package decomposes that
// workflow into four collaborators:
//
//   - Directory: read-only enumeration of profiles, apps and their status
//   - Mutator: idempotent create/delete requests for a single resource
//   - Poller: bounded convergence polling over a set of apps
//   - Orchestrator: sequences app deletion before profile deletion
//   - Coordinator: bulk delete-and-recreate across many profiles
//
// # Ordering guarantees
//
// Within one profile, all app delete requests are issued before any status is
// polled, and the profile delete is never issued before convergence completes.
// Profiles are independent: no cross-profile ordering is guaranteed, and a
// failure for one profile never aborts the others.
//
// # Error classification
//
// Every remote call returns a classified outcome rather than relying on raw
// SDK error matching:
//
//   - absent: the target no longer exists; success for deletes, terminal
//     Deleted for status polls, never surfaced as an error
//   - rejected: the control plane refused a mutation for a substantive reason
//     (bad configuration, permissions, quota); isolated per resource
//   - convergence: the polling bound was exhausted with apps still
//     non-terminal; the profile is reported Blocked and can be retried later
//   - transport: network or control-plane unavailability; propagated, never
//     masked, since masking risks deleting a profile whose apps' true state
//     is unknown
package workspace
