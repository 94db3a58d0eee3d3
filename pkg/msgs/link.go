// Package msgs defines the messages the vehicle publishes.
package msgs

import (
	"github.com/golang/protobuf/proto"
)

// LinkStatus is published, retained, each time the cellular link comes
// back with a new address.
type LinkStatus struct {
	VehicleId string `protobuf:"bytes,1,opt,name=vehicle_id,json=vehicleId,proto3" json:"vehicle_id,omitempty"`
	Interface string `protobuf:"bytes,2,opt,name=interface,proto3" json:"interface,omitempty"`
	Address   string `protobuf:"bytes,3,opt,name=address,proto3" json:"address,omitempty"`
	State     string `protobuf:"bytes,4,opt,name=state,proto3" json:"state,omitempty"`
	// Timestamp is unix time in milliseconds.
	Timestamp int64 `protobuf:"varint,5,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *LinkStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LinkStatus) Reset() { *m = LinkStatus{} }

// String implements proto.Message.
func (m *LinkStatus) String() string { return proto.CompactTextString(m) }

// Encode encodes the message.
func (m *LinkStatus) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeLinkStatus decodes an encoded LinkStatus.
func DecodeLinkStatus(data []byte) (*LinkStatus, error) {
	var m LinkStatus
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
