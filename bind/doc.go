// Package bind mounts components onto a dom tree. It walks data-* directives,
// binds them to reactive state through batched effects, reconciles keyed
// lists with the minimum number of moves and routes events through one
// delegated listener per event type.
//
// Directives:
//
//	data-func="name"             mount root, names a registered Factory
//	data-static                  skip this subtree
//	data-if="path"               render a fresh clone while path is truthy
//	data-bind="click:save init"  event handlers and one-shot initializers
//	data-loop="(item, i) in xs"  repeat <template> content per element
//	data-key="item.id"           row key for data-loop, index by default
//	data-ref="name"              expose the node as refs[name]
//	data-text / data-html / data-value="path"   "*path" evaluates once
//	data-props="disabled:busy,title:hint"
//	data-class="active:selected"
package bind
