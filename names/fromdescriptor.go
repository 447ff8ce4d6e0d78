package names

import (
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// CollectFromDescriptor builds a Map directly from an already-compiled
// FileDescriptorProto, for dependencies a resolver serves pre-compiled
// (resolver.WellKnown, resolver.DescriptorSetResolver) that have no AST to
// run through Collect. Every entry behaves like a parsed file's own
// top-level definition: Span stays zero (Entry's own doc comment already
// calls this case out: "loaded from a binary descriptor"), and Public is
// true so a plain import of this file resolves against its contents.
func CollectFromDescriptor(fd *descriptorpb.FileDescriptorProto) *Map {
	m := New()

	scope := ""
	if pkg := fd.GetPackage(); pkg != "" {
		for _, part := range strings.Split(pkg, ".") {
			scope = joinScope(scope, part)
			m.add(scope, Entry{Kind: KindPackage, Public: true})
		}
	}

	for _, msg := range fd.GetMessageType() {
		addDescriptorMessage(m, scope, msg)
	}
	for _, enum := range fd.GetEnumType() {
		addDescriptorEnum(m, scope, enum)
	}
	for _, svc := range fd.GetService() {
		addDescriptorService(m, scope, svc)
	}
	return m
}

func addDescriptorMessage(m *Map, scope string, msg *descriptorpb.DescriptorProto) {
	fqn := joinScope(scope, msg.GetName())
	m.add(fqn, Entry{Kind: KindMessage, Public: true})

	for _, f := range msg.GetField() {
		m.add(joinScope(fqn, f.GetName()), Entry{Kind: KindField, Number: f.GetNumber(), Public: true})
	}
	for _, o := range msg.GetOneofDecl() {
		m.add(joinScope(fqn, o.GetName()), Entry{Kind: KindOneof, Public: true})
	}
	for _, nested := range msg.GetNestedType() {
		addDescriptorMessage(m, fqn, nested)
	}
	for _, e := range msg.GetEnumType() {
		addDescriptorEnum(m, fqn, e)
	}
}

func addDescriptorEnum(m *Map, scope string, enum *descriptorpb.EnumDescriptorProto) {
	fqn := joinScope(scope, enum.GetName())
	m.add(fqn, Entry{Kind: KindEnum, Public: true})
	for _, v := range enum.GetValue() {
		m.add(joinScope(fqn, v.GetName()), Entry{Kind: KindEnumValue, Number: v.GetNumber(), Public: true})
	}
}

func addDescriptorService(m *Map, scope string, svc *descriptorpb.ServiceDescriptorProto) {
	fqn := joinScope(scope, svc.GetName())
	m.add(fqn, Entry{Kind: KindService, Public: true})
	for _, method := range svc.GetMethod() {
		m.add(joinScope(fqn, method.GetName()), Entry{Kind: KindMethod, Public: true})
	}
}
