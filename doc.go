// Package pinfield is the pin layer of a 3D building wellbeing map.
//
// Visitors drop a feedback pin on a floor of a building model, answer a
// questionnaire fetched at runtime, and see other visitors' pins colored by
// one of their numeric answers. pinfield owns the pin state, screen-space
// clustering, the dynamic questionnaire form, ordinal color encoding, the
// pointer and touch gesture state machine and the lifecycle of the draft pin.
// It does not draw anything: the host renders the [Marker] values and the
// [Panel] view model it gets back each frame.
//
// # Quick start
//
//	cam := pinfield.NewOrbitCamera(r3.Vector{X: -14, Y: 16, Z: 14}, r3.Vector{Y: 3}, 1280, 720)
//	a := pinfield.New(pinfield.Options{
//		Camera:        cam,
//		Backend:       client,     // e.g. *restapi.Client
//		Questionnaire: client,
//		Translator:    pinfield.NewCatalog("de"),
//	})
//	a.LoadQuestionnaire(ctx, "de")
//	a.Reload(ctx)
//
// Then, once per frame:
//
//	a.Update()
//	for _, m := range a.Markers() { /* draw m.Position() in m.Color */ }
//	panel := a.Panel()
//
// The ebitenhost package wires all of this to an Ebitengine window.
//
// # Threading
//
// An [Annotator] is single-threaded. Network calls run through [Options.Go]
// and their results are applied during the next [Annotator.Update].
//
// # Questionnaire
//
// A [Question] is a tagged union over [SliderConfig], [MultiConfig] and
// [TextConfig]. Slider answers are stored as percents; see [ToPercent] and
// [FromPercent]. When no questionnaire source is configured, or it fails,
// [FallbackQuestions] is used.
//
// # Gestures
//
// Mouse clicks on a pin open it read-only. With placement armed
// ([Annotator.TogglePlacement]) a click on the active floor places a draft and
// opens the form. On touch, holding a finger still for [LongPressDuration]
// places a draft without arming first.
//
// # ECS integration
//
// Set an [EventSink] with [Annotator.SetEventSink] to receive
// [AnnotationEvent] values. The pinfield/ecs submodule forwards them to
// [Donburi] events.
//
// [Donburi]: https://github.com/yohamta/donburi
package pinfield
