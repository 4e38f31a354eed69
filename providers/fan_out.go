package providers

import "go-home.io/x/macs/plugins/common"

// IFanOutProvider defines internal interface for the fan-out channels.
// Displays subscribe to presentation frames and turn log updates.
type IFanOutProvider interface {
	SubscribePresentation() (int64, chan *common.Presentation)
	UnSubscribePresentation(int64)
	ChannelInPresentation() chan *common.Presentation
	SubscribeTurns() (int64, chan []*common.Turn)
	UnSubscribeTurns(int64)
	ChannelInTurns() chan []*common.Turn
	Stop()
}
