// Package ecs provides ECS adapters for pinfield's annotation events.
//
// The primary adapter is [NewDonburiStore], which bridges annotation events
// (pin clicks, placements, submissions, reloads, mode changes) into a
// [Donburi] world as typed events. Subscribe to [AnnotationEventType] in your
// ECS systems to receive them. [NewDraftMirror] keeps an entity in sync with
// the unsent draft pin.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	annotator.SetEventSink(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
